package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/artpar/stackctl/internal/core/compose"
	"github.com/artpar/stackctl/internal/core/deployment"
	"github.com/artpar/stackctl/internal/shell/docker"
	"github.com/artpar/stackctl/internal/shell/project"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

// =============================================================================
// Application
// =============================================================================

// connectFunc opens the container runtime. The returned closer releases it.
type connectFunc func(cfg *Config, logger *slog.Logger, metrics *docker.Metrics) (project.Runtime, io.Closer, error)

type app struct {
	stdout io.Writer
	stderr io.Writer

	// flags
	configPath  string
	file        string
	projectName string

	cfg      *Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *docker.Metrics
	connect  connectFunc
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:  stdout,
		stderr:  stderr,
		connect: connectDocker,
	}
}

// connectDocker opens the Docker runtime described by cfg.
func connectDocker(cfg *Config, logger *slog.Logger, metrics *docker.Metrics) (project.Runtime, io.Closer, error) {
	cli, err := docker.NewDockerClient(cfg.Docker.Host)
	if err != nil {
		return nil, nil, err
	}
	rt := docker.NewRuntime(cli,
		docker.WithLegacyNames(cfg.Docker.LegacyNames),
		docker.WithMetrics(metrics),
		docker.WithLogger(logger),
	)
	return rt, cli, nil
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "stackctl",
		Short:         "Inspect the service graph and containers of a compose project",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.writeMetrics()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file")
	flags.StringVarP(&a.file, "file", "f", "", "compose file (default docker-compose.yml)")
	flags.StringVarP(&a.projectName, "project-name", "p", "", "project name (default: compose file directory)")

	root.AddCommand(
		a.configCommand(),
		a.psCommand(),
		a.resolveCommand(),
		a.orphansCommand(),
		a.versionCommand(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.file != "" {
		cfg.Project.File = a.file
	}
	if a.projectName != "" {
		cfg.Project.Name = a.projectName
	}
	a.cfg = cfg
	a.logger = SetupLogger(cfg, a.stderr)

	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.metrics = docker.NewMetrics(a.registry)
	}
	return nil
}

// loadProject parses the compose file. With withRuntime the project is bound
// to the container runtime; done must be called afterwards.
func (a *app) loadProject(withRuntime bool) (p *project.Project, done func(), err error) {
	content, err := os.ReadFile(a.cfg.Project.File)
	if err != nil {
		return nil, nil, fmt.Errorf("read compose file: %w", err)
	}

	name := a.cfg.Project.ResolvedName()
	specs, err := compose.ParseServices(name, string(content), compose.ParseOptions{Environment: environ()})
	if err != nil {
		return nil, nil, err
	}

	done = func() {}
	var rt project.Runtime
	if withRuntime {
		var closer io.Closer
		rt, closer, err = a.connect(a.cfg, a.logger, a.metrics)
		if err != nil {
			return nil, nil, err
		}
		done = func() {
			if err := closer.Close(); err != nil {
				a.logger.Warn("failed to close runtime", "error", err)
			}
		}
	}

	p, err = project.FromSpecs(name, specs, rt, project.WithLogger(a.logger))
	if err != nil {
		done()
		return nil, nil, err
	}
	return p, done, nil
}

func (a *app) writeMetrics() error {
	if a.registry == nil {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.stderr, mf); err != nil {
			return err
		}
	}
	return nil
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// =============================================================================
// Commands
// =============================================================================

func (a *app) configCommand() *cobra.Command {
	var withDeps bool
	cmd := &cobra.Command{
		Use:   "config [SERVICE...]",
		Short: "Print services in start order",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, done, err := a.loadProject(false)
			if err != nil {
				return err
			}
			defer done()

			services, err := p.Services(args, withDeps)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tIMAGE\tDEPENDS ON\tNETWORK")
			for _, s := range services {
				deps := strings.Join(s.Dependencies(), ",")
				if deps == "" {
					deps = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name(), s.Options().Image, deps, s.Net())
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if p.UsesDefaultNetwork() {
				fmt.Fprintf(a.stdout, "\ndefault network: %s\n", p.DefaultNetworkName())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withDeps, "with-deps", false, "include the dependencies of the named services")
	return cmd
}

func (a *app) psCommand() *cobra.Command {
	var all, oneOff bool
	cmd := &cobra.Command{
		Use:   "ps [SERVICE...]",
		Short: "List the project's containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, done, err := a.loadProject(true)
			if err != nil {
				return err
			}
			defer done()

			for _, name := range args {
				if _, err := p.Service(name); err != nil {
					return err
				}
			}

			containers, err := p.Containers(cmd.Context(), project.ContainerFilter{
				Services: args,
				Stopped:  all,
				OneOff:   oneOff,
			})
			if err != nil {
				return err
			}
			return a.printContainers(p.Name(), containers)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include stopped containers")
	cmd.Flags().BoolVar(&oneOff, "one-off", false, "include one-off containers")
	return cmd
}

func (a *app) resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve SERVICE",
		Short: "Resolve a service's volumes_from and network references to containers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, done, err := a.loadProject(true)
			if err != nil {
				return err
			}
			defer done()

			s, err := p.Service(args[0])
			if err != nil {
				return err
			}

			volumes, err := s.ResolvedVolumesFrom(cmd.Context())
			if err != nil {
				return err
			}
			mode, err := s.ResolvedNetMode(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(a.stdout, "volumes_from:")
			for _, v := range volumes {
				fmt.Fprintf(a.stdout, "  %s\n", v)
			}
			if mode == "" {
				mode = "default"
			}
			fmt.Fprintf(a.stdout, "network_mode: %s\n", mode)
			return nil
		},
	}
}

func (a *app) orphansCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List project containers whose service is no longer declared",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, done, err := a.loadProject(true)
			if err != nil {
				return err
			}
			defer done()

			orphans, err := p.Orphans(cmd.Context(), project.ContainerFilter{Stopped: all})
			if err != nil {
				return err
			}
			return a.printContainers(p.Name(), orphans)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include stopped containers")
	return cmd
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// no config needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "stackctl %s (built %s)\n", Version, BuildTime)
		},
	}
}

func (a *app) printContainers(projectName string, containers []deployment.ContainerRecord) error {
	matcher := deployment.NewMatcher()

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSERVICE\tCONTAINER ID\tIMAGE\tSTATE")
	for _, c := range containers {
		service := "-"
		if id, ok := matcher.Identify(projectName, c); ok && id.Service != "" {
			service = id.Service
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Name, service, c.ShortID(), c.Image, c.State)
	}
	return w.Flush()
}
