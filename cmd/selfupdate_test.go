package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSelfUpdateRejectsDevVersion(t *testing.T) {
	orig := rootCmd.Version
	t.Cleanup(func() { rootCmd.Version = orig })

	for _, version := range []string{"", "dev"} {
		rootCmd.Version = version
		err := runSelfUpdate(newSelfUpdateCmd(), nil)
		assert.ErrorContains(t, err, "cannot self-update a development version")
	}
}
