// Copyright (c) 2025 @AmarnathCJD

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amarnathcjd/moocauth"
	"github.com/amarnathcjd/moocauth/internal/keys"
	"github.com/amarnathcjd/moocauth/internal/utils"
	"github.com/k0kubun/pp"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version = "0.0.0"
	Commit  = ""
)

const envPrefix = "MOOCAUTH"

// app is the state shared by every subcommand of one root command.
type app struct {
	vip    *viper.Viper
	cfg    *moocauth.Config
	client *moocauth.Client
	log    *utils.Logger
	debug  bool
	errOut io.Writer
}

func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	a := &app{vip: viper.New()}

	root := &cobra.Command{
		Use:           "moocauth",
		Short:         "Offline helpers for the icourse163 login handshake",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	if Commit != "" {
		root.Version = fmt.Sprintf("%s (%s)", Version, Commit)
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("key", moocauth.DefaultSM4Key, "SM4 key as 32 hex characters")
	flags.String("pubkey", "", "RSA public key file (PEM, DER or base64)")
	flags.String("log-level", "info", "trace, debug, info, warn, error or none")
	flags.String("log-format", "text", "text or json")
	flags.BoolVar(&a.debug, "debug", false, "dump intermediate structures to stderr")

	_ = a.vip.BindPFlag("sm4key", flags.Lookup("key"))
	_ = a.vip.BindPFlag("loglevel", flags.Lookup("log-level"))
	_ = a.vip.BindPFlag("logformat", flags.Lookup("log-format"))

	root.AddCommand(
		newEncryptCmd(a),
		newDecryptCmd(a),
		newPasswordCmd(a),
		newHashCmd(a),
		newSolveCmd(a),
		newTicketCmd(a),
		newLoginCmd(a),
		newSessionCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.errOut = cmd.ErrOrStderr()

	logCfg := &utils.LoggerConfig{
		Level:  utils.ParseLevel(cfg.LogLevel),
		Prefix: "moocauth",
		Output: cmd.ErrOrStderr(),
		Color:  true,
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "", "text":
	case "json":
		logCfg.Formatter = &utils.JSONFormatter{}
	default:
		return errors.Errorf("unknown log format %q", cfg.LogFormat)
	}
	a.log = utils.NewLoggerWithConfig(logCfg)

	a.client, err = moocauth.NewClient(cfg, moocauth.WithLogger(a.log))
	if err != nil {
		return err
	}
	a.dump("config", cfg)
	if a.debug {
		return a.dumpPublicKey()
	}
	return nil
}

func (a *app) dumpPublicKey() error {
	key := a.client.PublicKey()
	fp, err := keys.Fingerprint(key)
	if err != nil {
		return err
	}
	encoded, err := keys.EncodePEM(key)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.errOut, "pubkey: %d bits, fingerprint %x\n%s", key.Size()*8, fp, encoded)
	return nil
}

// loadConfig layers defaults, the config file, MOOCAUTH_* variables and
// flags, in increasing priority.
func (a *app) loadConfig(cmd *cobra.Command) (*moocauth.Config, error) {
	v := a.vip
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := moocauth.DefaultConfig()
	for key, value := range map[string]any{
		"sm4key":      cfg.SM4Key,
		"pkid":        cfg.ProductID,
		"product":     cfg.Product,
		"topurl":      cfg.TopURL,
		"remember":    cfg.Remember,
		"days":        cfg.RememberDays,
		"chunksize":   cfg.ChunkSize,
		"loglevel":    cfg.LogLevel,
		"logformat":   cfg.LogFormat,
		"cache":       cfg.CachePath,
		"cachesecret": cfg.CacheSecret,
		"cachettl":    cfg.CacheTTL,
		"pubkey":      cfg.PublicKey,
	} {
		v.SetDefault(key, value)
	}

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}

	if path, _ := cmd.Flags().GetString("pubkey"); path != "" {
		encoded, err := readPublicKey(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading public key")
		}
		cfg.PublicKey = encoded
	}
	if cfg.PublicKey == "" {
		cfg.PublicKey = moocauth.DefaultPublicKey
	}
	return cfg, nil
}

// readPublicKey returns the first key in path as PEM. Files without PEM
// blocks are parsed as DER or base64.
func readPublicKey(path string) (string, error) {
	found, err := keys.ReadFromFile(path)
	if err == nil {
		return keys.EncodePEM(found[0])
	}
	if !errors.Is(err, keys.ErrKeyFormat) {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	key, err := keys.ParsePublicKey(data)
	if err != nil {
		return "", err
	}
	return keys.EncodePEM(key)
}

func (a *app) dump(label string, v any) {
	if !a.debug {
		return
	}
	fmt.Fprintf(a.errOut, "%s: ", label)
	_, _ = pp.Fprintln(a.errOut, v)
}

// input returns args[0], or stdin when there is no argument or it is "-".
func input(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.Wrap(err, "reading stdin")
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
