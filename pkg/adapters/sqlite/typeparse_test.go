package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNativeType(t *testing.T) {
	tests := []struct {
		in   string
		want NativeType
	}{
		{"INTEGER", NativeType{Name: "INTEGER"}},
		{"varchar(128)", NativeType{Name: "varchar", Length: intPtr(128)}},
		{"DECIMAL(10, 2)", NativeType{Name: "DECIMAL", Length: intPtr(10), Precision: intPtr(2)}},
		{"DECIMAL( 10 ,2 )", NativeType{Name: "DECIMAL", Length: intPtr(10), Precision: intPtr(2)}},
		{"DOUBLE   PRECISION", NativeType{Name: "DOUBLE PRECISION"}},
		{"UNSIGNED BIG INT", NativeType{Name: "UNSIGNED BIG INT"}},
		{"CHARACTER(20)", NativeType{Name: "CHARACTER", Length: intPtr(20)}},
		{"  text  ", NativeType{Name: "text"}},
		{"", NativeType{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNativeType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNativeType_Invalid(t *testing.T) {
	for _, in := range []string{"VARCHAR(", "DECIMAL(1,2,3)", "(10)", "INT(abc)", "9LIVES"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseNativeType(in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid column type")
		})
	}
}
