// Command jausnode runs a two-component JAUS node: a platform-management
// component and a navigation/reporting component sharing one JUDP transport.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/core"
	"github.com/fhackett/gojaus/judp"
	"github.com/fhackett/gojaus/messages"
	"github.com/fhackett/gojaus/mobility"
)

const version = "0.1.0"

type runFlags struct {
	subsystem   uint16
	port        int
	authority   uint8
	metricsAddr string
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jausnode",
		Short:         "Run a JAUS node over JUDP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the jausnode version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func newRunCmd() *cobra.Command {
	flags := runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the node and serve until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}
	addRunFlags(cmd.Flags(), &flags)
	return cmd
}

func addRunFlags(fs *pflag.FlagSet, flags *runFlags) {
	fs.Uint16Var(&flags.subsystem, "subsystem", 1, "JAUS subsystem id")
	fs.IntVar(&flags.port, "port", judp.Port, "UDP port to bind")
	fs.Uint8Var(&flags.authority, "authority", 0, "default authority floor")
	fs.StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")
}

func run(flags runFlags) error {
	if flags.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	transport, err := judp.New(judp.Config{Port: flags.port})
	if err != nil {
		return err
	}
	defer transport.Close()

	if flags.metricsAddr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(judp.NewCollector(transport.Metrics()))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(flags.metricsAddr, mux); err != nil {
				logrus.WithError(err).Warn("metrics server stopped")
			}
		}()
	}

	platformID := messages.Id{Subsystem: flags.subsystem, Node: 1, Component: 1}
	platform, err := jaus.NewComponent(jaus.ComponentConfig{
		ID:            platformID,
		Name:          "PlatformManagement",
		NodeName:      "platform",
		SubsystemName: "vehicle",
	},
		core.NewLiveness(),
		core.NewEvents(),
		core.NewAccessControl(),
		core.NewDiscovery(),
	)
	if err != nil {
		return err
	}

	navigationID := messages.Id{Subsystem: flags.subsystem, Node: 1, Component: 2}
	navigation, err := jaus.NewComponent(jaus.ComponentConfig{
		ID:               navigationID,
		Name:             "NavigationReporting",
		NodeName:         "platform",
		SubsystemName:    "vehicle",
		DefaultAuthority: flags.authority,
	},
		core.NewLiveness(),
		core.NewEvents(),
		core.NewAccessControl(),
		core.NewManagement(),
		core.NewListManager(),
		mobility.NewLocalPoseSensor(),
		mobility.NewVelocityStateSensor(),
		mobility.NewLocalWaypointDriver(),
		mobility.NewLocalWaypointListDriver(),
	)
	if err != nil {
		return err
	}

	platform.Listen(transport.Connect(platformID))
	navigation.Listen(transport.Connect(navigationID))
	logrus.WithFields(logrus.Fields{
		"platform":   platformID,
		"navigation": navigationID,
		"port":       flags.port,
	}).Info("node up")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := navigation.Close(ctx); err != nil {
		logrus.WithError(err).Warn("navigation close failed")
	}
	if err := platform.Close(ctx); err != nil {
		logrus.WithError(err).Warn("platform close failed")
	}
	return nil
}
