package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/crypto"
)

func init() {
	rootCmd.AddCommand(generateKeyCmd)
}

var generateKeyCmd = &cobra.Command{
	Use:   "generate-key",
	Short: "Generate a base64 AES-256 encryption key",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := crypto.GenerateKeyB64()
		if err != nil {
			return err
		}
		fmt.Println(key)
		return nil
	},
}
