package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/gcbaptista/go-ordered-list/client"
	"github.com/gcbaptista/go-ordered-list/config"
	"github.com/gcbaptista/go-ordered-list/coordinator"
	"github.com/gcbaptista/go-ordered-list/internal/logging"
	"github.com/gcbaptista/go-ordered-list/model"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Ordered List CLI - drive a running list server\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [options] <command> [args]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  list                 Print the loaded pages\n")
	fmt.Fprintf(os.Stderr, "  move <from> <to>     Move the record at view position from to position to\n")
	fmt.Fprintf(os.Stderr, "  select <id>...       Select records\n")
	fmt.Fprintf(os.Stderr, "  unselect <id>...     Unselect records\n")
	fmt.Fprintf(os.Stderr, "  reset                Drop the custom order\n")
	fmt.Fprintf(os.Stderr, "  stats                Print the server summary\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file")
		baseURL    = flag.String("url", "", "Server base URL (default "+config.DefaultBaseURL+")")
		timeout    = flag.Duration("timeout", 0, "Request timeout (default 10s)")
		search     = flag.String("search", "", "Case-insensitive substring filter")
		pages      = flag.Int("pages", 1, "Number of pages to load")
		pageSize   = flag.Int("page-size", 0, "Records per page (default 20)")
		verbose    = flag.Bool("v", false, "Log mutation lifecycle events")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	settings := config.ClientSettings{}
	if *configPath != "" {
		_, fileSettings, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		settings = fileSettings
	}
	if *baseURL != "" {
		settings.BaseURL = *baseURL
	}
	if *timeout > 0 {
		settings.Timeout = *timeout
	}
	if *pageSize > 0 {
		settings.PageSize = *pageSize
	}
	settings.ApplyDefaults()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger := logging.New(logging.Settings{Level: level, Format: logging.FormatConsole})

	coord, err := coordinator.New(client.NewHTTPTransport(settings),
		coordinator.WithPageSize(settings.PageSize),
		coordinator.WithNotifier(coordinator.LogNotifier{Logger: logger}),
		coordinator.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create coordinator")
	}

	ctx := context.Background()
	if err := run(ctx, coord, logger, *search, *pages, flag.Args()); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, coord *coordinator.Coordinator, logger zerolog.Logger, search string, pages int, args []string) error {
	command, rest := args[0], args[1:]

	if command == "stats" {
		stats, err := coord.Stats(ctx)
		if err != nil {
			return err
		}
		return printJSON(stats)
	}

	if err := coord.SetSearch(ctx, search); err != nil {
		return err
	}
	if err := loadPages(ctx, coord, pages); err != nil {
		return err
	}

	switch command {
	case "list":
	case "move":
		if len(rest) != 2 {
			return fmt.Errorf("move needs <from> <to>")
		}
		positions, err := parseInts(rest)
		if err != nil {
			return err
		}
		if err := loadThrough(ctx, coord, max(positions[0], positions[1])); err != nil {
			return err
		}
		if err := coord.Move(ctx, positions[0], positions[1]); err != nil {
			return err
		}
	case "select", "unselect":
		ids, err := parseInts(rest)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("%s needs at least one id", command)
		}
		update := model.SelectionUpdate{SelectedIDs: []int{}, UnselectedIDs: []int{}}
		if command == "select" {
			update.SelectedIDs = ids
		} else {
			update.UnselectedIDs = ids
		}
		if err := coord.UpdateSelection(ctx, update); err != nil {
			return err
		}
	case "reset":
		if err := coord.ResetOrder(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %q", command)
	}

	view := coord.View()
	logger.Debug().Int("loaded", view.Len()).Int("total", view.TotalItems()).Msg("View ready")
	return printView(view)
}

func loadPages(ctx context.Context, coord *coordinator.Coordinator, pages int) error {
	for i := 1; i < pages; i++ {
		fetched, err := coord.FetchNextPage(ctx)
		if err != nil {
			return err
		}
		if !fetched {
			return nil
		}
	}
	return nil
}

// loadThrough fetches pages until position pos is loaded or the server has no more.
func loadThrough(ctx context.Context, coord *coordinator.Coordinator, pos int) error {
	for coord.View().Len() <= pos {
		fetched, err := coord.FetchNextPage(ctx)
		if err != nil {
			return err
		}
		if !fetched {
			return nil
		}
	}
	return nil
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", arg)
		}
		out[i] = n
	}
	return out, nil
}

func printView(view coordinator.View) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tID\tVALUE\tSELECTED\tDEFAULT\tINDEX")
	for pos, item := range view.Items() {
		fmt.Fprintf(w, "%d\t%d\t%s\t%t\t%d\t%d\n",
			pos, item.ID, item.Value, item.Selected, item.DefaultIndex, item.EffectiveIndex())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d of %d records loaded (more: %t)\n", view.Len(), view.TotalItems(), view.HasMore())
	return nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
