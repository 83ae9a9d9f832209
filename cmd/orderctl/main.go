// Command orderctl управляет хранилищем заказов из командной строки:
// create, find, list, update, health, serve, version.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/app"
	"github.com/vladislavdragonenkov/checkout/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/checkout/internal/health"
	"github.com/vladislavdragonenkov/checkout/internal/version"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `usage: orderctl <command> [flags]

commands:
  create -file order.json   store a new order ("-" reads stdin)
  find -id ID               print one order
  list                      print all orders
  update -file order.json   orders are immutable; always fails
  health                    print storage health report
  serve                     run ops server (/metrics, /healthz, /readyz, /livez)
  version                   print build information

storage is selected with ORDERS_STORAGE_DRIVER (memory|postgres|sqlite)`

type cli struct {
	getenv func(string) string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli{getenv: os.Getenv, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func (c cli) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(c.stderr, usage)
		return exitUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "version":
		_, _ = fmt.Fprintln(c.stdout, version.String())
		return exitOK
	case "help", "-h", "--help":
		_, _ = fmt.Fprintln(c.stdout, usage)
		return exitOK
	case "create", "find", "list", "update", "health", "serve":
	default:
		_, _ = fmt.Fprintf(c.stderr, "unknown command %q\n\n%s\n", command, usage)
		return exitUsage
	}

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	file := fs.String("file", "-", "order JSON file, - for stdin")
	id := fs.String("id", "", "order id")
	if err := fs.Parse(rest); err != nil {
		return exitUsage
	}

	cfg, err := app.LoadConfig(c.getenv)
	if err != nil {
		return c.fail(err)
	}
	app.SetupLogger(cfg.LogLevel)
	log.SetOutput(c.stderr)

	a, err := app.Open(ctx, cfg)
	if err != nil {
		return c.fail(err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.WithError(err).Warn("close application")
		}
	}()

	switch command {
	case "create":
		return c.create(ctx, a, *file)
	case "find":
		return c.find(ctx, a, *id)
	case "list":
		return c.list(ctx, a)
	case "update":
		return c.update(ctx, a, *file)
	case "health":
		return c.health(ctx, a)
	default:
		return c.serve(ctx, a)
	}
}

func (c cli) create(ctx context.Context, a *app.App, file string) int {
	order, err := c.readOrder(file)
	if err != nil {
		return c.fail(err)
	}
	placed, err := a.Orders.PlaceOrder(ctx, order)
	if err != nil {
		return c.fail(err)
	}
	return c.print(toDTO(placed))
}

func (c cli) find(ctx context.Context, a *app.App, id string) int {
	if id == "" {
		_, _ = fmt.Fprintln(c.stderr, "find: -id is required")
		return exitUsage
	}
	order, err := a.Orders.GetOrder(ctx, id)
	if err != nil {
		return c.fail(err)
	}
	return c.print(toDTO(order))
}

func (c cli) list(ctx context.Context, a *app.App) int {
	orders, err := a.Orders.ListOrders(ctx)
	if err != nil {
		return c.fail(err)
	}
	out := make([]orderDTO, 0, len(orders))
	for _, order := range orders {
		out = append(out, toDTO(order))
	}
	return c.print(out)
}

func (c cli) update(ctx context.Context, a *app.App, file string) int {
	order, err := c.readOrder(file)
	if err != nil {
		return c.fail(err)
	}
	if err := a.Orders.AmendOrder(ctx, order); err != nil {
		return c.fail(err)
	}
	return c.print(toDTO(order))
}

func (c cli) health(ctx context.Context, a *app.App) int {
	report := a.Health.Report(ctx)
	if code := c.print(report); code != exitOK {
		return code
	}
	if report.Status == healthcheck.StatusUnhealthy {
		return exitError
	}
	return exitOK
}

func (c cli) serve(ctx context.Context, a *app.App) int {
	if err := a.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return c.fail(err)
	}
	return exitOK
}

func (c cli) readOrder(file string) (domain.Order, error) {
	if file == "" || file == "-" {
		return decodeOrder(c.stdin)
	}
	f, err := os.Open(file)
	if err != nil {
		return domain.Order{}, fmt.Errorf("open order file: %w", err)
	}
	defer f.Close()
	return decodeOrder(f)
}

func (c cli) print(v any) int {
	if err := writeJSON(c.stdout, v); err != nil {
		return c.fail(err)
	}
	return exitOK
}

func (c cli) fail(err error) int {
	_, _ = fmt.Fprintln(c.stderr, err)
	return exitError
}
