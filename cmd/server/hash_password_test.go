package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordCommandReadsStdin(t *testing.T) {
	var out bytes.Buffer
	hashPasswordCmd.SetIn(strings.NewReader("open-sesame\n"))
	hashPasswordCmd.SetOut(&out)

	require.NoError(t, hashPasswordCmd.RunE(hashPasswordCmd, nil))

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("open-sesame")))
}

func TestHashPasswordCommandRejectsEmpty(t *testing.T) {
	hashPasswordCmd.SetIn(strings.NewReader("\n"))
	hashPasswordCmd.SetOut(&bytes.Buffer{})
	assert.Error(t, hashPasswordCmd.RunE(hashPasswordCmd, nil))
}
