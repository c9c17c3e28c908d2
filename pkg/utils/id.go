package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	characters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	runIDLength = 10
)

// GenerateRunID gera um identificador curto para execuções de jobs
func GenerateRunID(prefix string) (string, error) {
	id, err := gonanoid.Generate(characters, runIDLength)
	if err != nil {
		return "", err
	}

	if prefix == "" {
		return id, nil
	}

	return prefix + "_" + id, nil
}
