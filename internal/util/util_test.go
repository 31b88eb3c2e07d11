// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string and file helpers shared by chatshell.
package util

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	data := []byte("hello, world!")

	require.NoError(t, AtomicWriteFile(path, data, 0644))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(content))
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "deep", "test.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("test data"), 0644))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("initial"), 0644))
	require.NoError(t, AtomicWriteFile(path, []byte("updated"), 0644))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(content))
}

func TestAtomicWriteFile_EmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")

	require.NoError(t, AtomicWriteFile(path, []byte{}, 0644))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestAtomicWriteFile_NoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	require.NoError(t, AtomicWriteFile(path, []byte("{}"), 0644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.json", entries[0].Name())
}

func TestAtomicWriteFileWithDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newdir", "test.txt")

	require.NoError(t, AtomicWriteFileWithDir(path, []byte("test"), 0600, 0700))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

// =============================================================================
// STRING TRUNCATION TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	testCases := []struct {
		input    string
		maxRunes int
		expected string
	}{
		{"hello world", 5, "he..."},
		{"hello", 5, "hello"},
		{"hi", 5, "hi"},
		{"", 5, ""},
		{"hello world", 0, ""},
		{"hello world", 11, "hello world"},
		{"abcd", 3, "abc"}, // no room for an ellipsis
		{"héllo wörld", 8, "héllo..."},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, TruncateRunes(tc.input, tc.maxRunes))
		})
	}
}

func TestTruncateRunesNoEllipsis(t *testing.T) {
	testCases := []struct {
		input    string
		maxRunes int
		expected string
	}{
		{"hello world", 5, "hello"},
		{"hello", 5, "hello"},
		{"", 5, ""},
		{"hello world", 0, ""},
		{"日本語テキスト", 3, "日本語"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, TruncateRunesNoEllipsis(tc.input, tc.maxRunes))
		})
	}
}

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 5, RuneLen("hello"))
	assert.Equal(t, 0, RuneLen(""))
	assert.Equal(t, 3, RuneLen("日本語"))
}

// =============================================================================
// DISPLAY WIDTH TESTS
// =============================================================================

func TestStringWidth(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
	}{
		{"hello", 5},
		{"", 0},
		{"日本語", 6},
		{"hello世界", 9},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, StringWidth(tc.input))
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "hello", TruncateWidth("hello", 10))
	assert.Equal(t, "hello", TruncateWidth("hello", 5))
	assert.Equal(t, "", TruncateWidth("hello", 0))

	cut := TruncateWidth("hello world", 6)
	assert.LessOrEqual(t, StringWidth(cut), 6)
	assert.Contains(t, cut, "…")

	cjk := TruncateWidth("日本語テキスト", 5)
	assert.LessOrEqual(t, StringWidth(cjk), 5)
}

func TestPadWidth(t *testing.T) {
	assert.Equal(t, "ab   ", PadWidth("ab", 5))
	assert.Equal(t, 6, StringWidth(PadWidth("日本", 6)))
	assert.Equal(t, 4, StringWidth(PadWidth("a long title", 4)))
}

// =============================================================================
// SEARCH FOLDING TESTS
// =============================================================================

func TestContainsFold(t *testing.T) {
	testCases := []struct {
		name   string
		s      string
		substr string
		want   bool
	}{
		{"empty query", "anything", "", true},
		{"case", "Trip Planning", "PLAN", true},
		{"missing", "Trip Planning", "budget", false},
		{"german sharp s", "Straße", "STRASSE", true},
		{"composed vs decomposed", "Café", "café", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ContainsFold(tc.s, tc.substr))
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, Fold("HELLO"), Fold("hello"))
	assert.NotEqual(t, Fold("hello"), Fold("help"))
}
