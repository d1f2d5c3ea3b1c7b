// gridlate — bulk spreadsheet translator: Gemini-backed cell range and sheet
// name translation for .xlsx workbooks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridlate/gridlate/cache"
	"github.com/gridlate/gridlate/config"
	"github.com/gridlate/gridlate/gemini"
	"github.com/gridlate/gridlate/i18n"
	"github.com/gridlate/gridlate/settings"
	"github.com/gridlate/gridlate/translate"
	"github.com/gridlate/gridlate/xlsx"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Status rendering
// ---------------------------------------------------------------------------

// countdownActive tracks whether the last status line was an in-place
// countdown, so the next regular line can terminate it first.
var countdownActive bool

// renderStatus adapts orchestrator status callbacks to the colored log
// helpers. Inter-batch countdown ticks are redrawn in place instead of
// scrolling the terminal.
func renderStatus(message, detail string, percent int, isError bool) {
	line := message
	if detail != "" {
		line += ": " + detail
	}
	if percent >= 0 {
		line = fmt.Sprintf("[%3d%%] %s", percent, line)
	}

	if message == "Waiting" {
		fmt.Fprintf(os.Stderr, "\r\033[K"+colorBlue+"[INFO]"+colorReset+" %s", line)
		countdownActive = true
		return
	}
	if countdownActive {
		fmt.Fprintln(os.Stderr)
		countdownActive = false
	}
	if isError {
		logError("%s", line)
	} else {
		logInfo("%s", line)
	}
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var apiKeyFlag string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gridlate",
		Short: "Bulk spreadsheet translator backed by Gemini",
		Long: `gridlate — bulk spreadsheet translator backed by Gemini.

Translates cell ranges and worksheet names of .xlsx workbooks, batching
texts to stay within API limits, caching repeated texts for the session,
and pacing requests on the free tier.

Commands:
  translate   Translate cell ranges of a workbook (or all config targets)
  sheets      Translate worksheet names
  auth        Manage the API key
  version     Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Gemini API key (or "+settings.EnvAPIKey+" env var)")

	root.AddCommand(
		newTranslateCmd(),
		newSheetsCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on the first interrupt, so a run
// stops between sleeps and requests rather than mid-write.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning("Interrupted, stopping after the current request...")
		cancel()
	}()

	return ctx, cancel
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gridlate version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		sheet    string
		cellRef  string
		lang     string
		model    string
		tier     string
		newSheet bool
		out      string
		dryRun   bool
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "translate [workbook.xlsx]",
		Short: "Translate cell ranges of a workbook",
		Long: `Translate the text cells of a workbook range using Gemini.

With a workbook argument, translates one range selected by --sheet and
--range (defaults: first sheet, used range). Without arguments, processes
every target declared in .gridlate.yaml in the working directory.

Numeric, boolean, and empty cells are left untouched. Cells whose
translation fails keep their original value.

Examples:
  # Translate the used range of the first sheet into French
  gridlate translate report.xlsx --lang French

  # Translate a specific range onto a copy of the sheet
  gridlate translate report.xlsx --sheet Data --range A1:C40 --lang German --new-sheet

  # Show what would be translated without calling the API
  gridlate translate report.xlsx --lang French --dry-run

  # Process all targets from .gridlate.yaml
  gridlate translate`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := translateArgs{
				sheet: sheet, cellRef: cellRef, lang: lang,
				model: model, tier: tier, newSheet: newSheet,
				out: out, dryRun: dryRun, timeout: timeout,
			}
			if len(args) == 1 {
				return runTranslateFile(args[0], a)
			}
			return runTranslateConfig(a)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name (default: first sheet)")
	cmd.Flags().StringVar(&cellRef, "range", "", "A1-notation range (default: used range)")
	cmd.Flags().StringVar(&lang, "lang", "", "Target language, e.g. \"French\"")
	cmd.Flags().StringVar(&model, "model", gemini.DefaultModel, "Gemini model name")
	cmd.Flags().StringVar(&tier, "tier", "free", "API tier: free (paced) or paid")
	cmd.Flags().BoolVar(&newSheet, "new-sheet", false, "Write translations onto a copy of the sheet")
	cmd.Flags().StringVar(&out, "out", "", "Write the workbook to this path instead of in place")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report cell/batch counts without calling the API")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (0 = default)")

	_ = cmd.RegisterFlagCompletionFunc("tier", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"free\tPaced requests, suited to free API quotas",
			"paid\tNo inter-batch delay",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

type translateArgs struct {
	sheet, cellRef, lang string
	model, tier          string
	newSheet             bool
	out                  string
	dryRun               bool
	timeout              time.Duration
}

func parseTier(s string) (translate.Tier, error) {
	switch s {
	case "", "free":
		return translate.TierFree, nil
	case "paid":
		return translate.TierPaid, nil
	default:
		return "", fmt.Errorf("tier must be \"free\" or \"paid\", got %q", s)
	}
}

// newOrchestrator builds the Gemini client and orchestrator shared by the
// translate and sheets commands. The client stays nil for dry runs, which
// never reach the network.
func newOrchestrator(a translateArgs, sessionCache *cache.Cache) (*translate.Orchestrator, error) {
	tier, err := parseTier(a.tier)
	if err != nil {
		return nil, err
	}

	var client translate.Client
	if !a.dryRun {
		key := settings.APIKey(apiKeyFlag)
		if key == "" {
			return nil, fmt.Errorf("%s (set one with 'gridlate auth set' or %s)",
				i18n.T("No API key configured"), settings.EnvAPIKey)
		}
		g := gemini.New(key)
		g.Model = a.model
		g.OnStatus = renderStatus
		if a.timeout > 0 {
			g.SetTimeout(a.timeout)
		}
		client = g
	}

	output := translate.OutputReplace
	if a.newSheet {
		output = translate.OutputNewSheet
	}

	return translate.New(client, sessionCache, translate.Options{
		TargetLanguage: a.lang,
		Tier:           tier,
		Output:         output,
		OnStatus:       renderStatus,
	}), nil
}

func runTranslateFile(path string, a translateArgs) error {
	if a.lang == "" {
		return fmt.Errorf("no target language; use --lang")
	}

	orch, err := newOrchestrator(a, nil)
	if err != nil {
		return err
	}

	wb, err := xlsx.Open(path)
	if err != nil {
		return err
	}
	defer wb.Close()

	sheet := a.sheet
	if sheet == "" {
		sheet = wb.FirstSheet()
	}

	if a.dryRun {
		report, err := orch.Plan(wb, sheet, a.cellRef)
		if err != nil {
			return err
		}
		printPlan(path, sheet, report)
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	report, err := orch.TranslateRange(ctx, wb, sheet, a.cellRef)
	if err != nil {
		return err
	}

	if err := saveWorkbook(wb, a.out); err != nil {
		return err
	}
	printReport(path, report)
	return nil
}

func runTranslateConfig(a translateArgs) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf("no workbook argument and no %s in the working directory", config.FileName)
	}
	if len(cfg.Targets) == 0 {
		logInfo("%s", i18n.T("Nothing to translate"))
		return nil
	}

	// Flags beat file values; file values beat built-in defaults.
	if a.model == "" || a.model == gemini.DefaultModel {
		if cfg.Model != "" {
			a.model = cfg.Model
		}
	}
	if a.tier == "" || a.tier == "free" {
		a.tier = cfg.Tier
	}
	if !a.newSheet && cfg.Output == "newSheet" {
		a.newSheet = true
	}

	ctx, cancel := signalContext()
	defer cancel()

	// One session cache across targets, cleared whenever the target
	// language changes so translations never leak across languages.
	sessionCache := cache.New()
	lastLang := ""

	failures := 0
	for _, t := range cfg.Targets {
		logInfo("Target %s: %s", t.Name, t.Path)

		ta := a
		ta.lang = t.Language
		ta.sheet = t.Sheet
		ta.cellRef = t.Range

		if ta.lang != lastLang {
			sessionCache.Clear()
			lastLang = ta.lang
		}

		if err := runConfigTarget(ctx, ta, t, sessionCache); err != nil {
			if ctx.Err() != nil {
				return err
			}
			logError("Target %s: %v", t.Name, err)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d targets failed", failures, len(cfg.Targets))
	}
	logSuccess("%s", i18n.T("Translation complete!"))
	return nil
}

func runConfigTarget(ctx context.Context, a translateArgs, t config.Target, sessionCache *cache.Cache) error {
	orch, err := newOrchestrator(a, sessionCache)
	if err != nil {
		return err
	}

	wb, err := xlsx.Open(t.Path)
	if err != nil {
		return err
	}
	defer wb.Close()

	sheet := a.sheet
	if sheet == "" {
		sheet = wb.FirstSheet()
	}

	if a.dryRun {
		report, err := orch.Plan(wb, sheet, a.cellRef)
		if err != nil {
			return err
		}
		printPlan(t.Path, sheet, report)
		return nil
	}

	report, err := orch.TranslateRange(ctx, wb, sheet, a.cellRef)
	if err != nil {
		return err
	}

	if t.SheetNames {
		if _, err := orch.TranslateSheetName(ctx, wb, report.OutputSheet); err != nil {
			logWarning("%v", err)
		}
	}

	if err := saveWorkbook(wb, ""); err != nil {
		return err
	}
	printReport(t.Path, report)
	return nil
}

func saveWorkbook(wb *xlsx.Workbook, out string) error {
	if out != "" {
		return wb.SaveAs(out)
	}
	return wb.Save()
}

func printPlan(path, sheet string, r *translate.Report) {
	cells := fmt.Sprintf(i18n.N("%d cell", "%d cells", r.Cells), r.Cells)
	batches := fmt.Sprintf(i18n.N("%d batch", "%d batches", r.Batches), r.Batches)
	logInfo("%s!%s: %s, %d unique, %d cached, %s",
		path, sheet, cells, r.UniqueTexts, r.CacheHits, batches)
}

func printReport(path string, r *translate.Report) {
	cells := fmt.Sprintf(i18n.N("%d cell", "%d cells", r.Cells), r.Cells)
	batches := fmt.Sprintf(i18n.N("%d batch", "%d batches", r.Batches), r.Batches)

	if r.FailedCells > 0 {
		logWarning("%s: %s, %s, %d failed (first error: %s)",
			path, cells, batches, r.FailedCells, r.FirstError)
		return
	}
	logSuccess("%s: %s translated in %s (cache hits: %d, output: %s)",
		path, cells, batches, r.CacheHits, r.OutputSheet)
}

// ---------------------------------------------------------------------------
// sheets (translate worksheet names)
// ---------------------------------------------------------------------------

func newSheetsCmd() *cobra.Command {
	var (
		sheets  string
		lang    string
		model   string
		tier    string
		out     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sheets <workbook.xlsx>",
		Short: "Translate worksheet names",
		Long: `Translate worksheet names using Gemini.

Translated names are stripped of characters illegal in sheet names,
truncated to the 31-character limit, and suffixed with _1, _2, ... when
they collide (case-insensitively) with an existing sheet.

Examples:
  # Translate every sheet name into German
  gridlate sheets report.xlsx --lang German

  # Translate selected sheets only
  gridlate sheets report.xlsx --lang German --sheets "Data,Summary"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if lang == "" {
				return fmt.Errorf("no target language; use --lang")
			}

			orch, err := newOrchestrator(translateArgs{
				lang: lang, model: model, tier: tier, timeout: timeout,
			}, nil)
			if err != nil {
				return err
			}

			wb, err := xlsx.Open(args[0])
			if err != nil {
				return err
			}
			defer wb.Close()

			targets, err := wb.SheetNames()
			if err != nil {
				return err
			}
			if sheets != "" {
				targets = strings.Split(sheets, ",")
			}

			ctx, cancel := signalContext()
			defer cancel()

			failures := 0
			for _, s := range targets {
				s = strings.TrimSpace(s)
				if s == "" {
					continue
				}
				if _, err := orch.TranslateSheetName(ctx, wb, s); err != nil {
					if ctx.Err() != nil {
						return err
					}
					logError("%v", err)
					failures++
				}
			}

			if err := saveWorkbook(wb, out); err != nil {
				return err
			}
			if failures > 0 {
				return fmt.Errorf("%d sheet names failed", failures)
			}
			logSuccess("%s", i18n.T("Translation complete!"))
			return nil
		},
	}

	cmd.Flags().StringVar(&sheets, "sheets", "", "Sheets to rename (comma-separated, default: all)")
	cmd.Flags().StringVar(&lang, "lang", "", "Target language, e.g. \"German\"")
	cmd.Flags().StringVar(&model, "model", gemini.DefaultModel, "Gemini model name")
	cmd.Flags().StringVar(&tier, "tier", "free", "API tier: free (paced) or paid")
	cmd.Flags().StringVar(&out, "out", "", "Write the workbook to this path instead of in place")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (0 = default)")

	return cmd
}

// ---------------------------------------------------------------------------
// auth (manage the API key)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the API key",
		Long: `Manage the stored Gemini API key.

The key is stored with 0600 permissions in the XDG data directory.
The ` + settings.EnvAPIKey + ` environment variable and the --api-key flag
take precedence over the store.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <api-key>",
			Short: "Store the API key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := settings.SetAPIKey(args[0]); err != nil {
					return err
				}
				logSuccess("%s (%s)", i18n.T("API key saved"), settings.FilePath())
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the stored API key (masked)",
			Run: func(cmd *cobra.Command, args []string) {
				key := settings.StoredAPIKey()
				if key == "" {
					logInfo("%s", i18n.T("No API key configured"))
					return
				}
				fmt.Printf("%s  (%s)\n", settings.MaskKey(key), settings.FilePath())
			},
		},
		&cobra.Command{
			Use:   "remove",
			Short: "Remove the stored API key",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := settings.RemoveAPIKey(); err != nil {
					return err
				}
				logSuccess("%s", i18n.T("API key removed"))
				return nil
			},
		},
	)

	return cmd
}
