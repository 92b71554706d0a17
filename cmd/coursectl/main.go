package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"videobelajar/internal/api"
	"videobelajar/internal/config"
	"videobelajar/internal/devutil"
	"videobelajar/internal/domain"
	"videobelajar/internal/export"
	"videobelajar/internal/logger"
	"videobelajar/internal/metrics"
	"videobelajar/internal/notify"
	"videobelajar/internal/sftpclient"
	"videobelajar/internal/store"
	cs "videobelajar/internal/sync"
)

const usage = `usage: coursectl <command> [flags]

commands:
  list                  load and print the catalog
  get <id>...           fetch specific courses
  create [fields]       add a course
  update -id <id> [fields]
                        edit a course; omitted fields keep their value
  delete [-yes] <id>    delete a course after confirmation
  export [-out f] [-brotli] [-sftp]
                        write the catalog as CSV

field flags: -title -category -level -thumbnail -description -duration -price
`

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "WARN: .env: %v\n", err)
	}
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app bundles one session: one store, one controller.
type app struct {
	cfg    config.Config
	client *api.Client
	ctrl   *cs.Controller
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, cfg config.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" || args[0] == "--help" {
		fmt.Fprint(stderr, usage)
		if len(args) == 0 {
			return 2
		}
		return 0
	}
	cmd, rest := args[0], args[1:]

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiURL := fs.String("api", cfg.APIBaseURL, "course API base URL")
	metricsOut := fs.String("metrics-out", "", "write Prometheus metrics to this file on exit")

	var handler func(a *app, fs *flag.FlagSet) int
	yes := new(bool)
	switch cmd {
	case "list":
		fields := fs.String("fields", "", "comma separated fields to print (debug)")
		handler = func(a *app, fs *flag.FlagSet) int { return a.list(ctx, *fields) }
	case "get":
		fields := fs.String("fields", "", "comma separated fields to print (debug)")
		handler = func(a *app, fs *flag.FlagSet) int { return a.get(ctx, fs.Args(), *fields) }
	case "create":
		form := formFlags(fs)
		handler = func(a *app, fs *flag.FlagSet) int { return a.create(ctx, form.build(fs, domain.CourseForm{})) }
	case "update":
		id := fs.String("id", "", "course id")
		form := formFlags(fs)
		handler = func(a *app, fs *flag.FlagSet) int { return a.update(ctx, domain.ID(*id), form, fs) }
	case "delete":
		yes = fs.Bool("yes", false, "do not ask for confirmation")
		handler = func(a *app, fs *flag.FlagSet) int { return a.remove(ctx, fs.Args()) }
	case "export":
		out := fs.String("out", filepath.Join(cfg.ExportDir, "courses.csv"), "output csv path")
		br := fs.Bool("brotli", false, "compress the output with brotli")
		up := fs.Bool("sftp", false, "upload the generated file via SFTP")
		handler = func(a *app, fs *flag.FlagSet) int { return a.export(ctx, *out, *br, *up) }
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	if err := fs.Parse(rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg.APIBaseURL = strings.TrimRight(*apiURL, "/")
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 2
	}

	a := newApp(cfg, *yes, stdin, stdout, stderr)
	code := handler(a, fs)

	if *metricsOut != "" {
		if err := writeMetrics(*metricsOut); err != nil {
			logger.Error("write metrics", slog.String("error", err.Error()))
		}
	}
	return code
}

func newApp(cfg config.Config, autoConfirm bool, stdin io.Reader, stdout, stderr io.Writer) *app {
	client := api.New(cfg.APIBaseURL, cfg.HTTPTimeout)
	st := store.New()

	var confirmer cs.Confirmer = notify.NewPrompt(stdin, stderr)
	if autoConfirm {
		confirmer = notify.Always{}
	}

	a := &app{cfg: cfg, client: client, stdin: stdin, stdout: stdout, stderr: stderr}
	a.ctrl = cs.New(client, st,
		cs.WithNotifier(notify.NewToast(stderr)),
		cs.WithConfirmer(confirmer),
	)
	return a
}

func (a *app) list(ctx context.Context, fields string) int {
	out := a.ctrl.Load(ctx)
	v := a.ctrl.Snapshot()
	if keys := devutil.SplitKeys(fields); len(keys) > 0 && v.Status == store.StatusSucceeded {
		for i, c := range v.Courses {
			fmt.Fprintf(a.stdout, "%d) %s\n", i+1, devutil.Format(devutil.Pick(c, keys...)))
		}
	} else {
		renderView(a.stdout, v)
	}
	return exitCode(out)
}

func (a *app) get(ctx context.Context, args []string, fields string) int {
	if len(args) == 0 {
		fmt.Fprintln(a.stderr, "get: at least one id is required")
		return 2
	}
	ids := make([]domain.ID, 0, len(args))
	for _, s := range args {
		ids = append(ids, domain.ID(s))
	}

	courses, errs := a.client.GetMany(ctx, ids)
	keys := devutil.SplitKeys(fields)
	for _, c := range courses {
		if !c.ID.Valid() {
			continue
		}
		if len(keys) > 0 {
			fmt.Fprintln(a.stdout, devutil.Format(devutil.Pick(c, keys...)))
			continue
		}
		renderCourse(a.stdout, c)
	}
	for _, err := range errs {
		fmt.Fprintf(a.stderr, "✗ %v\n", err)
	}
	if len(errs) > 0 {
		return 1
	}
	return 0
}

func (a *app) create(ctx context.Context, form domain.CourseForm) int {
	a.load(ctx)
	before := len(a.ctrl.Snapshot().Courses)

	out := a.ctrl.SubmitCreate(ctx, form)
	if out != cs.OutcomeDone {
		return exitCode(out)
	}
	// the store ignores a created course with a missing or duplicate id
	if v := a.ctrl.Snapshot(); len(v.Courses) > before {
		renderCourse(a.stdout, v.Courses[len(v.Courses)-1])
	} else {
		fmt.Fprintln(a.stderr, "warning: the server response has no usable course id; run coursectl list to see the catalog")
	}
	return exitCode(out)
}

func (a *app) update(ctx context.Context, id domain.ID, form *courseFlags, fs *flag.FlagSet) int {
	if !id.Valid() {
		fmt.Fprintln(a.stderr, "update: -id is required")
		return 2
	}
	if a.load(ctx) != cs.OutcomeDone {
		return 1
	}

	target, ok := findCourse(a.ctrl.Snapshot().Courses, id)
	if !ok {
		fmt.Fprintf(a.stderr, "update: course %s not found\n", id)
		return 1
	}
	a.ctrl.RequestEdit(target)

	out := a.ctrl.SubmitEdit(ctx, form.build(fs, domain.FormFromCourse(target)))
	if out == cs.OutcomeDone {
		if c, ok := findCourse(a.ctrl.Snapshot().Courses, id); ok {
			renderCourse(a.stdout, c)
		}
	}
	return exitCode(out)
}

func (a *app) remove(ctx context.Context, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(a.stderr, "delete: exactly one id is required")
		return 2
	}
	a.load(ctx)

	out := a.ctrl.RequestDelete(ctx, domain.ID(args[0]))
	if out == cs.OutcomeDeclined {
		fmt.Fprintln(a.stderr, "dibatalkan")
	}
	return exitCode(out)
}

func (a *app) export(ctx context.Context, outPath string, br, upload bool) int {
	if a.ctrl.Load(ctx) != cs.OutcomeDone {
		renderView(a.stderr, a.ctrl.Snapshot())
		return 1
	}
	courses := a.ctrl.Snapshot().Courses

	written, err := export.WriteCourseFile(outPath, courses, export.Options{Brotli: br})
	if err != nil {
		logger.Error("export failed", slog.String("error", err.Error()))
		return 1
	}
	logger.Info("export written", slog.String("path", written), slog.Int("courses", len(courses)))
	fmt.Fprintln(a.stdout, written)

	if !upload {
		return 0
	}
	if err := a.cfg.ValidateSFTP(); err != nil {
		logger.Error("sftp config", slog.String("error", err.Error()))
		return 2
	}

	upCfg := sftpclient.Config{
		Host:                  a.cfg.SFTPHost,
		Port:                  a.cfg.SFTPPort,
		User:                  a.cfg.SFTPUser,
		Pass:                  a.cfg.SFTPPass,
		RemoteDir:             a.cfg.SFTPDir,
		InsecureIgnoreHostKey: a.cfg.SFTPInsecureIgnoreHostKey,
		KnownHostsPath:        a.cfg.SFTPKnownHosts,
	}
	upCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	remoteName := filepath.Base(written)
	if err := sftpclient.UploadFile(upCtx, upCfg, written, remoteName); err != nil {
		logger.Error("sftp upload failed", slog.String("error", err.Error()))
		return 1
	}
	logger.Info("uploaded", slog.String("target", fmt.Sprintf("sftp://%s:%d%s/%s", upCfg.Host, upCfg.Port, upCfg.RemoteDir, remoteName)))
	return 0
}

// load runs the initial catalog load and prints the error page if it fails.
func (a *app) load(ctx context.Context) cs.Outcome {
	out := a.ctrl.Load(ctx)
	if out == cs.OutcomeFailed {
		renderView(a.stderr, a.ctrl.Snapshot())
	}
	return out
}

func findCourse(list []domain.Course, id domain.ID) (domain.Course, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Course{}, false
}

func exitCode(out cs.Outcome) int {
	switch out {
	case cs.OutcomeDone, cs.OutcomeDeclined:
		return 0
	}
	return 1
}

func writeMetrics(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := metrics.WriteText(f); err != nil {
		return err
	}
	return f.Close()
}
