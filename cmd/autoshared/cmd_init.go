package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/app"
	"github.com/iov-one/autoshare/coin"
	"github.com/iov-one/autoshare/x/admin"
	"github.com/iov-one/autoshare/x/cash"
	"github.com/spf13/pflag"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("init", pflag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(os.Stderr, `
Create the home directory with a configuration file and a genesis file.
Existing files are never overwritten.

`)
		fl.PrintDefaults()
	}
	var (
		homeFl   = fl.String("home", defaultHome(), "Directory to store files under. You can use AUTOSHARE_HOME environment variable to set it.")
		chainFl  = fl.String("chain-id", "autoshare-dev", "Chain ID of the new ledger.")
		adminFl  = fl.String("admin", "", "Address of the admin. Without it the admin must be set with an admin/init transaction.")
		feeFl    = fl.Uint32("usage-fee", admin.DefaultUsageFee, "Price of a single usage.")
		tokensFl = fl.StringSlice("tokens", []string{"IOV"}, "Tickers of the supported payment tokens.")
		fundFl   = fl.StringSlice("fund", nil, "Genesis balances as <address>=<amount> <ticker>, for example 1B2C...=1000 IOV.")
	)
	fl.Parse(args)

	gen, err := buildGenesis(*chainFl, *adminFl, *feeFl, *tokensFl, *fundFl)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize genesis: %s", err)
	}

	if err := os.MkdirAll(filepath.Join(*homeFl, dataDir), 0755); err != nil {
		return fmt.Errorf("cannot create home directory: %s", err)
	}
	if err := writeNew(filepath.Join(*homeFl, genesisFile), append(raw, '\n')); err != nil {
		return fmt.Errorf("cannot write genesis: %s", err)
	}
	if err := DefaultConfig(*homeFl).Save(*homeFl); err != nil {
		return fmt.Errorf("cannot write configuration: %s", err)
	}
	fmt.Fprintf(output, "initialized %s in %s\n", gen.ChainID, *homeFl)
	return nil
}

func buildGenesis(chainID, adminAddr string, fee uint32, tokens, funds []string) (app.Genesis, error) {
	gen := app.Genesis{ChainID: chainID, AppState: autoshare.Options{}}
	if err := gen.Validate(); err != nil {
		return gen, err
	}

	if adminAddr != "" {
		addr, err := autoshare.ParseAddress(adminAddr)
		if err != nil {
			return gen, fmt.Errorf("invalid admin: %s", err)
		}
		conf := admin.Configuration{Admin: addr, UsageFee: fee, SupportedTokens: tokens}
		if err := conf.Validate(); err != nil {
			return gen, fmt.Errorf("invalid admin configuration: %s", err)
		}
		raw, err := json.Marshal(map[string]interface{}{"admin": conf})
		if err != nil {
			return gen, err
		}
		gen.AppState["conf"] = raw
	}

	var accounts []cash.GenesisAccount
	for _, f := range funds {
		chunks := strings.SplitN(f, "=", 2)
		if len(chunks) != 2 {
			return gen, fmt.Errorf("invalid fund %q, want <address>=<amount> <ticker>", f)
		}
		addr, err := autoshare.ParseAddress(chunks[0])
		if err != nil {
			return gen, fmt.Errorf("invalid fund address: %s", err)
		}
		amount, err := coin.ParseHumanFormat(chunks[1])
		if err != nil {
			return gen, fmt.Errorf("invalid fund amount: %s", err)
		}
		accounts = append(accounts, cash.GenesisAccount{Address: addr, Coins: []coin.Coin{amount}})
	}
	if len(accounts) != 0 {
		raw, err := json.Marshal(accounts)
		if err != nil {
			return gen, err
		}
		gen.AppState["cash"] = raw
	}
	return gen, nil
}
