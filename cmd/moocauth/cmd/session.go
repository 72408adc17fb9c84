// Copyright (c) 2025 @AmarnathCJD

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/amarnathcjd/moocauth/internal/session"
	"github.com/spf13/cobra"
)

func newSessionCmd(a *app) *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the encrypted cookie cache",
	}
	cmd.PersistentFlags().StringVar(&account, "account", "default", "account name when the cache is a .db file")

	var cookie string
	set := &cobra.Command{
		Use:   "set",
		Short: "Store a cookie header copied from a logged-in browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, done, err := a.store(account)
			if err != nil {
				return err
			}
			defer done()
			c, err := session.NewCredential(cookie, time.Now(), a.cfg.CacheTTL)
			if err != nil {
				return err
			}
			if err := store.Store(c); err != nil {
				return err
			}
			a.log.Infof("credential cached in %s", store.Path())
			return nil
		},
	}
	set.Flags().StringVar(&cookie, "cookie", "", "Cookie header including NTESSTUDYSI")
	_ = set.MarkFlagRequired("cookie")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the cached csrf key and expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, done, err := a.store(account)
			if err != nil {
				return err
			}
			defer done()
			c, err := session.NewCachedProvider(store, nil, a.log).Credential(cmd.Context())
			if err != nil {
				return err
			}
			a.dump("credential", c)
			expires := "never"
			if !c.ExpiresAt.IsZero() {
				expires = c.ExpiresAt.Format(time.RFC3339)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "csrfKey=%s expires=%s\n", c.CSRFKey, expires)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the cookie cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, done, err := a.store(account)
			if err != nil {
				return err
			}
			defer done()
			return session.NewCachedProvider(store, nil, a.log).Invalidate()
		},
	}

	cmd.AddCommand(set, show, clearCmd)
	return cmd
}

// store opens the configured cache. A path ending in .db is a bbolt
// database holding one credential per account.
func (a *app) store(account string) (session.Store, func(), error) {
	if filepath.Ext(a.cfg.CachePath) == ".db" {
		db, err := session.OpenBolt(a.cfg.CachePath, a.cfg.CacheSecret)
		if err != nil {
			return nil, nil, err
		}
		return db.Account(account), func() { _ = db.Close() }, nil
	}
	store, err := session.NewFromFile(a.cfg.CachePath, a.cfg.CacheSecret)
	return store, func() {}, err
}
