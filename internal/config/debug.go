package config

import "os"

func IsDebug() bool {
	return os.Getenv("EVA_DEBUG") == "1"
}
