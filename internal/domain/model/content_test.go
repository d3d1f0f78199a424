package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidHash(t *testing.T) {
	tests := []struct {
		name  string
		hash  string
		valid bool
	}{
		{"lowercase hex", strings.Repeat("ab", 32), true},
		{"uppercase hex", strings.Repeat("AF", 32), true},
		{"mixed digits", "89dbfa4888600b29be17ddee8bdbf9c48999c81cb811964eee6b057d8467f927", true},
		{"empty", "", false},
		{"too short", strings.Repeat("a", 63), false},
		{"too long", strings.Repeat("a", 65), false},
		{"non hex character", strings.Repeat("a", 63) + "g", false},
		{"trailing newline", strings.Repeat("a", 64) + "\n", false},
		{"short garbage", "ZZZ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidHash(tt.hash))
		})
	}
}

func TestFileRefRepoID(t *testing.T) {
	ref := FileRef{Owner: "jedisct1", Repo: "MiMo-7B-RL-GGUF", Path: "sub/dir/model.gguf"}
	assert.Equal(t, "jedisct1/MiMo-7B-RL-GGUF", ref.RepoID())
}
