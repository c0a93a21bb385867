// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fold_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/aulagate/pkg/fold"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already_folded", "maestro", "maestro"},
		{"upper_case", "ADMINISTRATIVO", "administrativo"},
		{"accents", "Dirección", "direccion"},
		{"separators", " super_user ", "superuser"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fold.Key(tt.input))
		})
	}
}
