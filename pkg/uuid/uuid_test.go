// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/aulagate/pkg/uuid"
)

/*
TestNew verifies that generated identifiers are distinct and valid.
*/
func TestNew(t *testing.T) {
	first, second := uuid.New(), uuid.New()

	assert.NotEqual(t, first, second)
	assert.True(t, uuid.Valid(first))
	assert.Len(t, first, 36)
}

/*
TestValid verifies that only canonical identifiers are accepted.
*/
func TestValid(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"canonical", "0190b3a4-7f1e-7cc2-9d3b-1a2b3c4d5e6f", true},
		{"uppercase", "0190B3A4-7F1E-7CC2-9D3B-1A2B3C4D5E6F", false},
		{"braced", "{0190b3a4-7f1e-7cc2-9d3b-1a2b3c4d5e6f}", false},
		{"empty", "", false},
		{"garbage", "not-a-uuid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, uuid.Valid(tt.value))
		})
	}
}
