package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteDBCmd_ListFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"Long", []string{"--list-databases"}, true},
		{"Short", []string{"-l"}, true},
		{"Alias", []string{"--list"}, true},
		{"None", []string{"--force"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleteList, deleteForce = false, false
			t.Cleanup(func() { deleteList, deleteForce = false, false })

			require.NoError(t, deleteDBCmd.ParseFlags(tt.args))
			assert.Equal(t, tt.want, deleteList)
		})
	}
}
