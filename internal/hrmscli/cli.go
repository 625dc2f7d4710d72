package hrmscli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/phillip-england/hrmslite/internal/apiclient"
	"github.com/phillip-england/hrmslite/internal/clientapp"
	"github.com/phillip-england/hrmslite/internal/envutil"
	"github.com/phillip-england/hrmslite/internal/hrms"
	"github.com/phillip-england/hrmslite/internal/spreadsheet"
)

var ErrUsage = errors.New("usage")

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

func Execute(args []string) error {
	if len(args) < 1 {
		return usageError()
	}

	switch args[0] {
	case "setup":
		return runSetup(args[1:])
	case "run":
		return runCommand(args[1:])
	case "export":
		return runExport(args[1:])
	case "import":
		return runImport(args[1:])
	default:
		return usageError()
	}
}

func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: hrmslite setup [--api-base-url http://localhost:8000] [--addr :3000] [--env-file .env] [--force]")
	fmt.Fprintln(w, "       hrmslite run [--config hrms.yaml]")
	fmt.Fprintln(w, "       hrmslite export employees --out employees.xlsx")
	fmt.Fprintln(w, "       hrmslite export attendance [--employee EMP001] [--start-date YYYY-MM-DD] [--end-date YYYY-MM-DD] --out attendance.xlsx")
	fmt.Fprintln(w, "       hrmslite import employees --file roster.xlsx")
}

func usageError() error {
	return fmt.Errorf("%w: hrmslite <setup|run|export|import> [...]", ErrUsage)
}

func runSetup(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	baseURL := fs.String("api-base-url", apiclient.DefaultBaseURL, "HRMS API base URL")
	addr := fs.String("addr", ":3000", "client listen address")
	envPath := fs.String("env-file", ".env", "path to .env file")
	force := fs.Bool("force", false, "overwrite existing env file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	target := strings.TrimRight(strings.TrimSpace(*baseURL), "/")
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return fmt.Errorf("--api-base-url must start with http:// or https://, got %q", *baseURL)
	}

	values := map[string]string{
		"CLIENT_ADDR":  *addr,
		"API_BASE_URL": target,
	}
	if err := envutil.WriteDotEnv(*envPath, values, *force); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", *envPath)
	return nil
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("CONFIG_PATH"), "optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := clientapp.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runExport(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: hrmslite export <employees|attendance> --out FILE", ErrUsage)
	}
	target := args[0]

	fs := flag.NewFlagSet("export "+target, flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("CONFIG_PATH"), "optional YAML config file")
	out := fs.String("out", "", "output .xlsx path")
	employeeID := fs.String("employee", "", "limit attendance to one employee id")
	startDate := fs.String("start-date", "", "attendance from date (YYYY-MM-DD)")
	endDate := fs.String("end-date", "", "attendance to date (YYYY-MM-DD)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("--out is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	api := clientapp.NewAPIClient(cfg)
	ctx := context.Background()

	var buf bytes.Buffer
	switch target {
	case "employees":
		employees, err := api.ListEmployees(ctx)
		if err != nil {
			return fmt.Errorf("list employees: %w", err)
		}
		if err := spreadsheet.WriteEmployees(&buf, employees); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "exported %d employee(s) to %s\n", len(employees), *out)
	case "attendance":
		filter := hrms.AttendanceFilter{
			EmployeeID: strings.TrimSpace(*employeeID),
			DateRange:  hrms.DateRange{StartDate: *startDate, EndDate: *endDate},
		}
		if err := validateRange(filter.DateRange); err != nil {
			return err
		}
		n, err := exportAttendance(ctx, api, filter, &buf)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "exported %d attendance record(s) to %s\n", n, *out)
	default:
		return fmt.Errorf("unknown export target %q", target)
	}

	if err := ensureParentDirs(*out); err != nil {
		return err
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	return nil
}

type attendanceExporter interface {
	ListAttendance(ctx context.Context, filter hrms.AttendanceFilter) ([]hrms.AttendanceRecord, error)
	ListEmployees(ctx context.Context) ([]hrms.Employee, error)
}

func exportAttendance(ctx context.Context, api attendanceExporter, filter hrms.AttendanceFilter, w io.Writer) (int, error) {
	var (
		records   []hrms.AttendanceRecord
		employees []hrms.Employee
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = api.ListAttendance(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		employees, err = api.ListEmployees(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("load attendance: %w", err)
	}
	if err := spreadsheet.WriteAttendance(w, records, hrms.EmployeeNames(employees)); err != nil {
		return 0, err
	}
	return len(records), nil
}

func validateRange(r hrms.DateRange) error {
	for flagName, value := range map[string]string{"--start-date": r.StartDate, "--end-date": r.EndDate} {
		if value == "" {
			continue
		}
		if _, err := hrms.ParseDate(value); err != nil {
			return fmt.Errorf("%s must be YYYY-MM-DD, got %q", flagName, value)
		}
	}
	return nil
}

func runImport(args []string) error {
	if len(args) < 1 || args[0] != "employees" {
		return fmt.Errorf("%w: hrmslite import employees --file FILE", ErrUsage)
	}

	fs := flag.NewFlagSet("import employees", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("CONFIG_PATH"), "optional YAML config file")
	path := fs.String("file", "", "roster spreadsheet (.xlsx or .xls)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("--file is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	f, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := importRoster(ctx, clientapp.NewAPIClient(cfg), f, filepath.Base(*path))
	if err != nil {
		return err
	}
	printImportResult(stdout, result)
	return nil
}

func importRoster(ctx context.Context, api spreadsheet.EmployeeCreator, r io.Reader, filename string) (spreadsheet.ImportResult, error) {
	rows, err := spreadsheet.ReadRows(r, filename)
	if err != nil {
		return spreadsheet.ImportResult{}, err
	}
	parsed, err := spreadsheet.ParseEmployees(rows)
	if err != nil {
		return spreadsheet.ImportResult{}, err
	}
	return spreadsheet.ImportEmployees(ctx, api, parsed)
}

func printImportResult(w io.Writer, result spreadsheet.ImportResult) {
	fmt.Fprintln(w, result.Summary())
	for _, failed := range result.Failed {
		if failed.EmployeeID != "" {
			fmt.Fprintf(w, "  line %d (%s): %s\n", failed.Line, failed.EmployeeID, failed.Message)
			continue
		}
		fmt.Fprintf(w, "  line %d: %s\n", failed.Line, failed.Message)
	}
}

// loadConfig reads .env from the working directory before the config file
// and environment are resolved.
func loadConfig(path string) (clientapp.Config, error) {
	if err := envutil.LoadDotEnv(".env"); err != nil {
		return clientapp.Config{}, fmt.Errorf("load .env: %w", err)
	}
	return clientapp.LoadConfig(path)
}

func ensureParentDirs(paths ...string) error {
	for _, p := range paths {
		dir := filepath.Dir(p)
		if dir == "." || dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
