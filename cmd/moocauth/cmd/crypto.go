// Copyright (c) 2025 @AmarnathCJD

package cmd

import (
	"fmt"
	"strconv"

	"github.com/amarnathcjd/moocauth/internal/sm4"
	"github.com/amarnathcjd/moocauth/internal/vdf"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newEncryptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt [plaintext|-]",
		Short: "SM4-ECB encrypt a string to hex",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input(cmd, args)
			if err != nil {
				return err
			}
			key, err := sm4.ParseKey(a.cfg.SM4Key)
			if err != nil {
				return err
			}
			out, err := sm4.EncryptString(text, key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newDecryptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt [hex|-]",
		Short: "Decrypt SM4-ECB hex back to text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input(cmd, args)
			if err != nil {
				return err
			}
			out, err := a.client.DecryptParams(text)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newPasswordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "password [password|-]",
		Short: "RSA encrypt a password to base64, as the login form does",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := input(cmd, args)
			if err != nil {
				return err
			}
			out, err := a.client.EncryptPassword(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newHashCmd(a *app) *cobra.Command {
	var seed string
	cmd := &cobra.Command{
		Use:   "hash [data|-]",
		Short: "Print the 32-bit proof signature hash of a string",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := input(cmd, args)
			if err != nil {
				return err
			}
			s, err := strconv.ParseUint(seed, 10, 32)
			if err != nil {
				return errors.Wrap(err, "seed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), vdf.Hash32(data, uint32(s)))
			return nil
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "0", "hash seed (the iteration count for proofs)")
	return cmd
}
