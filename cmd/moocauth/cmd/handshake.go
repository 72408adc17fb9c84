// Copyright (c) 2025 @AmarnathCJD

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/amarnathcjd/moocauth"
	"github.com/amarnathcjd/moocauth/internal/encoding/params"
	"github.com/amarnathcjd/moocauth/internal/vdf"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSolveCmd(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "solve [challenge.json|-]",
		Short: "Solve a power check challenge and print its pVParam",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := readChallenge(cmd, args)
			if err != nil {
				return err
			}
			a.dump("challenge", ch)

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			power, err := a.client.SolvePower(ctx, ch)
			if err != nil {
				return err
			}
			return writeJSON(cmd, power)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 waits for maxTime)")
	return cmd
}

func newTicketCmd(a *app) *cobra.Command {
	var email, rtid string
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Print the request body of the ticket call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.client.TicketParams(email, rtid)
			if err != nil {
				return err
			}
			a.dump("params", r.Fields())
			return writeBody(cmd, a, r)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&rtid, "rtid", "", "request tracking id (random when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var (
		req       moocauth.LoginRequest
		challenge string
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Print the request body of the login call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ch *vdf.Challenge
			if challenge != "" {
				var err error
				if ch, err = readChallenge(cmd, []string{challenge}); err != nil {
					return err
				}
			}

			enc, err := a.client.PrepareLogin(cmd.Context(), &req, ch)
			if err != nil {
				return err
			}
			if a.debug {
				plain, _ := a.client.DecryptParams(enc)
				a.dump("params", plain)
			}
			body, err := moocauth.RequestBody(enc)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&req.Email, "email", "", "account email")
	flags.StringVar(&req.Password, "password", "", "account password")
	flags.StringVar(&req.Ticket, "ticket", "", "tk value from the ticket call")
	flags.StringVar(&req.Rtid, "rtid", "", "request tracking id (random when empty)")
	flags.StringVar(&challenge, "challenge", "", "power check challenge JSON file, or - for stdin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("ticket")
	return cmd
}

func readChallenge(cmd *cobra.Command, args []string) (*vdf.Challenge, error) {
	var (
		data []byte
		err  error
	)
	if len(args) > 0 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		var s string
		s, err = input(cmd, nil)
		data = []byte(s)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading challenge")
	}
	return vdf.ParseChallenge(data)
}

func writeBody(cmd *cobra.Command, a *app, r *params.Record) error {
	enc, err := a.client.EncryptParams(r)
	if err != nil {
		return err
	}
	body, err := moocauth.RequestBody(enc)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(body))
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
