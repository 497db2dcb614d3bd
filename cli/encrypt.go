package cli

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/zeptools/gw-dbconn/sec"
)

func newEncryptPWCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt-pw <plaintext>",
		Short: "Encrypt a password for the pw key",
		Long: `Encrypt a password with $` + sec.EnvSecretKey + ` and print it with the enc: prefix.
Put the output as the pw value of the properties file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cipher, err := sec.CipherFromEnv()
			if err != nil {
				return err
			}
			if cipher == nil {
				return errors.New("$" + sec.EnvSecretKey + " is not set")
			}
			token, err := cipher.Seal(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func newGenKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-key",
		Short: "Generate a random key for $" + sec.EnvSecretKey,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := make([]byte, chacha20poly1305.KeySize)
			if _, err := rand.Read(key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(key))
			return nil
		},
	}
}
