// Command dailydeck is a CLI client for the daily inspiration deck.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/dailydeck/internal/catalog"
	"github.com/and161185/dailydeck/internal/draw"
	"github.com/and161185/dailydeck/internal/identity"
	"github.com/and161185/dailydeck/internal/ledger"
	"github.com/and161185/dailydeck/internal/ledger/sqlite"
	"github.com/and161185/dailydeck/internal/mirror"
	"github.com/and161185/dailydeck/internal/model"
	"github.com/and161185/dailydeck/internal/pick"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "dailydeck")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dailydeck")
}

func dataDir() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return filepath.Join(v, "dailydeck")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "dailydeck")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func ledgerPath() string { return filepath.Join(dataDir(), "ledger.db") }

func saveToken(tok string, exp time.Time) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printCard(card model.Card, note string) {
	fmt.Printf("[%s] %s\n", card.Category, card.Title)
	fmt.Println(card.Message)
	if note != "" {
		fmt.Println(note)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

// parseSetting splits "key=bool" into its parts.
func parseSetting(arg string) (string, bool, error) {
	key, val, ok := strings.Cut(arg, "=")
	if !ok || key == "" {
		return "", false, fmt.Errorf("expected key=true|false, got %q", arg)
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return "", false, fmt.Errorf("bad value %q for %s", val, key)
	}
	return key, b, nil
}

// openOrchestrator opens the local ledger and wires the orchestrator with
// server catalogs and, when logged in, the history mirror.
func openOrchestrator(ctx context.Context, server, strategy string, log *zap.Logger) (*draw.Orchestrator, *sqlite.Store, error) {
	strat := pick.LifelineStrategy(strategy)
	if strat != pick.LifelineStrict && strat != pick.LifelineCascade {
		return nil, nil, fmt.Errorf("unknown lifeline strategy %q", strategy)
	}

	_ = os.MkdirAll(dataDir(), 0o700)
	store, err := sqlite.Open(ledgerPath())
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}

	led := ledger.New(store, ledger.WithLogger(log))

	rec := mirror.Recorder(mirror.Nop{})
	if tok, err := loadToken(); err == nil {
		rec = mirror.NewHTTP(server, tok)
	}

	o := draw.New(led,
		draw.WithRecorder(rec),
		draw.WithLogger(log),
		draw.WithLifelineStrategy(strat),
	)
	o.LoadCatalogs(ctx, catalog.New(server, catalog.WithLogger(log)))
	return o, store, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `dailydeck CLI
Usage:
  dailydeck [-server URL] [-lifeline-strategy strict|cascade] <cmd> [args]

Commands:
  draw                                  draw today's card
  lifeline                              use a bonus draw (5/month)
  status                                current card, quota, settings
  reset-deck                            clear drawn-card history
  settings   [key=true|false]           show or update toggles
  signup     -email E -password P [-first F] [-last L]
  login      -email E -password P       (saves token)
  history    [-type daily|lifeline] [-limit N] [-offset N]
  version
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the local ledger and the server API.
func main() {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	strategy := flag.String("lifeline-strategy", string(pick.LifelineStrict), "lifeline strategy: strict|cascade")
	verbose := flag.Bool("v", false, "log internal warnings")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	log := zap.NewNop()
	if *verbose {
		log, _ = zap.NewDevelopment()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("dailydeck %s (%s)\n", version, buildDate)

	case "signup":
		fs := flag.NewFlagSet("signup", flag.ExitOnError)
		email := fs.String("email", "", "email")
		password := fs.String("password", "", "password")
		first := fs.String("first", "", "first name")
		last := fs.String("last", "", "last name")
		_ = fs.Parse(flag.Args()[1:])
		if *email == "" || *password == "" {
			fmt.Fprintln(os.Stderr, "need -email and -password")
			os.Exit(1)
		}
		userID, err := newAPIClient(*server, "").signup(ctx, *email, *password, *first, *last)
		if err != nil {
			fail(err)
		}
		fmt.Println(userID)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "email")
		password := fs.String("password", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		if *email == "" || *password == "" {
			fmt.Fprintln(os.Stderr, "need -email and -password")
			os.Exit(1)
		}
		res, err := newAPIClient(*server, "").login(ctx, *email, *password)
		if err != nil {
			fail(err)
		}
		exp := time.Now().Add(15 * time.Minute)
		if t, err := time.Parse(time.RFC3339, res.ExpiresAt); err == nil {
			exp = t
		}
		if err := saveToken(res.AccessToken, exp); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "draw":
		o, store, err := openOrchestrator(ctx, *server, *strategy, log)
		if err != nil {
			fail(err)
		}
		defer store.Close()

		card, deckReset := o.DrawDaily()
		if card == nil {
			snap := o.Snapshot()
			switch {
			case snap.CardsLoading:
				fail(errors.New("card catalog unavailable"))
			case snap.HasDrawnToday && snap.CurrentCard != nil:
				fmt.Println("already drawn today:")
				printCard(*snap.CurrentCard, "")
			default:
				fail(errors.New("no cards available"))
			}
			return
		}
		note := ""
		if deckReset {
			note = "deck was exhausted and has been reset"
		}
		printCard(*card, note)
		o.Flush()

	case "lifeline":
		o, store, err := openOrchestrator(ctx, *server, *strategy, log)
		if err != nil {
			fail(err)
		}
		defer store.Close()

		card := o.UseLifeline()
		if card == nil {
			snap := o.Snapshot()
			if snap.CardsLoading {
				fail(errors.New("card catalog unavailable"))
			}
			fail(fmt.Errorf("no lifelines available (%d left this month)", snap.LifelinesRemaining))
		}
		snap := o.Snapshot()
		printCard(*card, fmt.Sprintf("lifelines left this month: %d", snap.LifelinesRemaining))
		o.Flush()

	case "status":
		o, store, err := openOrchestrator(ctx, *server, *strategy, log)
		if err != nil {
			fail(err)
		}
		defer store.Close()

		snap := o.Snapshot()
		out := map[string]any{
			"hasDrawnToday":      snap.HasDrawnToday,
			"lifelinesRemaining": snap.LifelinesRemaining,
			"lifelineUniqueLeft": snap.LifelineUniqueRemaining,
			"cardsLoading":       snap.CardsLoading,
			"settings":           snap.Settings,
		}
		if snap.CurrentCard != nil {
			out["currentCard"] = *snap.CurrentCard
			out["currentCardId"] = identity.Of(*snap.CurrentCard)
		}
		printJSON(out)

	case "reset-deck":
		_ = os.MkdirAll(dataDir(), 0o700)
		store, err := sqlite.Open(ledgerPath())
		if err != nil {
			fail(err)
		}
		defer store.Close()
		led := ledger.New(store, ledger.WithLogger(log))
		led.ResetDrawnHistory()
		fmt.Println("deck reset")

	case "settings":
		_ = os.MkdirAll(dataDir(), 0o700)
		store, err := sqlite.Open(ledgerPath())
		if err != nil {
			fail(err)
		}
		defer store.Close()
		led := ledger.New(store, ledger.WithLogger(log))

		if flag.NArg() < 2 {
			printJSON(led.Settings())
			return
		}
		key, val, err := parseSetting(flag.Arg(1))
		if err != nil {
			fail(err)
		}
		printJSON(led.UpdateSetting(key, val))

	case "history":
		fs := flag.NewFlagSet("history", flag.ExitOnError)
		cardType := fs.String("type", "", "daily|lifeline (empty = both)")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "page offset")
		_ = fs.Parse(flag.Args()[1:])

		token, err := loadToken()
		if err != nil {
			fail(err)
		}
		items, err := newAPIClient(*server, token).history(ctx, *cardType, *limit, *offset)
		if err != nil {
			fail(err)
		}
		printJSON(items)

	default:
		usage()
	}
}
