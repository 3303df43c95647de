package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
