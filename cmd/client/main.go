package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/HydroPal/internal/client/storage"
	"github.com/atinyakov/HydroPal/internal/models"
)

var (
	version   string
	buildDate string
)

const helpText = `Available commands:
  help                            show this help
  profile                         show your profile
  water <ml>                      log water
  today                           today's total
  clear                           delete today's water logs
  ranking [n]                     today's top drinkers
  monthly [year]                  monthly totals
  list [water|plastic]            list entries
  add <water|plastic> <amount> [unit]
  delete <id>                     delete an entry
  exit`

// repl runs the interactive shell loop until exit or end of input.
func repl(ctx context.Context, api *storage.APIClient, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "hydropal> ")
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			fmt.Fprintln(out, "Bye")
			return
		}
		if err := runCommand(ctx, api, args, out); err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
	}
}

func runCommand(ctx context.Context, api *storage.APIClient, args []string, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch args[0] {
	case "help":
		fmt.Fprintln(out, helpText)
	case "profile":
		p, err := api.Profile(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s <%s> role=%s\n", p.Name, p.Email, p.Role)
		if p.CreatedAt != nil {
			fmt.Fprintf(out, "member since %s\n", p.CreatedAt.Format("2006-01-02"))
		}
	case "water":
		if len(args) < 2 {
			return errors.New("usage: water <ml>")
		}
		ml, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}
		if _, err := api.LogWater(ctx, ml); err != nil {
			return err
		}
		fmt.Fprintf(out, "Logged %g ml\n", ml)
	case "today":
		total, err := api.TodayTotal(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Today: %g ml\n", total)
	case "clear":
		n, err := api.ClearToday(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %d water logs\n", n)
	case "ranking":
		limit, err := optionalInt(args, "ranking [n]")
		if err != nil {
			return err
		}
		ranking, err := api.Ranking(ctx, limit)
		if err != nil {
			return err
		}
		if len(ranking) == 0 {
			fmt.Fprintln(out, "Nobody logged water today")
		}
		for i, r := range ranking {
			fmt.Fprintf(out, "%2d. %-20s %g ml\n", i+1, r.Name, r.TotalAmount)
		}
	case "monthly":
		year, err := optionalInt(args, "monthly [year]")
		if err != nil {
			return err
		}
		totals, err := api.Monthly(ctx, year)
		if err != nil {
			return err
		}
		for i, v := range totals {
			fmt.Fprintf(out, "%s %g ml\n", time.Month(i+1).String()[:3], v)
		}
	case "list":
		var logType models.LogType
		if len(args) > 1 {
			logType = models.LogType(args[1])
		}
		entries, err := api.ListEntries(ctx, logType)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No entries")
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s  %-7s %g %s  %s\n",
				e.ID, e.LogType, e.Data.AmountValue(), e.Data.Unit, e.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
	case "add":
		if len(args) < 3 {
			return errors.New("usage: add <water|plastic> <amount> [unit]")
		}
		amount, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[2])
		}
		data := models.Data{Amount: &amount}
		if len(args) > 3 {
			data.Unit = models.Unit(args[3])
		}
		created, err := api.CreateEntry(ctx, models.LogType(args[1]), data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Tracking entry created: %s\n", created.ID)
	case "delete":
		if len(args) < 2 {
			return errors.New("usage: delete <id>")
		}
		if err := api.DeleteEntry(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(out, "Tracking entry deleted")
	default:
		return fmt.Errorf("unknown command %q, type 'help' for a list of commands", args[0])
	}
	return nil
}

func optionalInt(args []string, usage string) (int, error) {
	if len(args) < 2 {
		return 0, nil
	}
	v, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	return v, nil
}

// main parses command-line flags and dispatches to the register, login,
// logout or shell commands.
func main() {
	var (
		baseURL     string
		caFile      string
		sessionPath string
		name        string
		email       string
		showVer     bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert trusted for HTTPS")
	flag.StringVar(&sessionPath, "session", storage.DefaultSessionPath(), "path to session file")
	flag.StringVar(&name, "name", "", "display name for registration")
	flag.StringVar(&email, "email", "", "email for register and login")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] register|login|logout|shell\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVer {
		fmt.Printf("HydroPal Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	httpClient, err := storage.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}
	store := &storage.SessionStore{Path: sessionPath}
	ctx := context.Background()
	stdin := bufio.NewReader(os.Stdin)

	switch cmd := flag.Arg(0); cmd {
	case "register", "login":
		if email == "" {
			log.Fatal("please provide -email")
		}
		if cmd == "register" && name == "" {
			log.Fatal("please provide -name")
		}
		password, err := storage.ReadPassword("Password: ", os.Stdin, stdin, os.Stdout)
		if err != nil {
			log.Fatal(err)
		}

		api := storage.NewAPIClient(baseURL, httpClient)
		var sess *storage.Session
		if cmd == "register" {
			sess, err = api.Register(ctx, name, email, password)
		} else {
			sess, err = api.Login(ctx, email, password)
		}
		if err != nil {
			log.Fatal(err)
		}
		if err := store.Save(sess); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Logged in as %s <%s>\n", sess.User.Name, sess.User.Email)
	case "logout":
		if err := store.Clear(); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Logged out")
	case "shell":
		sess, err := store.Load()
		if err != nil {
			log.Fatal(err)
		}
		url := baseURL
		if sess.BaseURL != "" && !isFlagSet("url") {
			url = sess.BaseURL
		}
		api := storage.NewAPIClient(url, httpClient)
		api.Token = sess.Token
		fmt.Printf("Hello %s. Type 'help' for a list of commands.\n", sess.User.Name)
		repl(ctx, api, stdin, os.Stdout)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
