package conveyor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  Selection
	}{
		{"empty", "", nil},
		{"single", "packages:extra", Selection{{Section: Packages, Names: []string{"extra"}}}},
		{
			"many sections",
			"commands:a,b;post.header:h",
			Selection{{Section: Commands, Names: []string{"a", "b"}}, {Section: PostHeader, Names: []string{"h"}}},
		},
		{"spaces and empty chunk", " pre : x , y ;; ", Selection{{Section: Pre, Names: []string{"x", "y"}}}},
		{"merged duplicate", "pre:x;post:z;pre:y", Selection{{Section: Pre, Names: []string{"x", "y"}}, {Section: Post, Names: []string{"z"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSelection(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSelection_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		input  string
		target error
	}{
		{"no colon", "packages", ErrInvalidSelection},
		{"unknown section", "kernel:a", ErrUnknownSection},
		{"empty name", "pre:a,,b", ErrInvalidSelection},
		{"path name", "pre:../x", ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseSelection(tt.input)
			require.ErrorIs(t, err, tt.target)
		})
	}
}

func TestSelection_StringAndNames(t *testing.T) {
	t.Parallel()
	sel, err := ParseSelection("commands:a,b;post:c")
	require.NoError(t, err)
	assert.Equal(t, "commands:a,b;post:c", sel.String())
	assert.Equal(t, []string{"c"}, sel.Names(Post))
	assert.Nil(t, sel.Names(Pre))
	assert.Empty(t, Selection(nil).String())
}

func TestParseSection(t *testing.T) {
	t.Parallel()
	for _, s := range Sections() {
		got, err := ParseSection(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseSection("POST")
	require.ErrorIs(t, err, ErrUnknownSection)
	assert.Equal(t, []Section{Commands, Packages, Pre, Post, PostHeader}, Sections())
}
