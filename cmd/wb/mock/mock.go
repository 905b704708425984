// Package mockcmder provides the mock command for running the in-memory
// workbench service.
package mockcmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrehe001/semanticworkbench/pkg/config"
	"github.com/andrehe001/semanticworkbench/pkg/logger"
	"github.com/andrehe001/semanticworkbench/pkg/mockservice"
)

const mockLongDesc string = `Run an in-memory workbench service.

Serves the conversation, message, participant, file, assistant, and
registration endpoints with in-memory state, plus per-conversation
server-sent event streams. Useful for local development and for running
assistant services without a real workbench deployment.

All state is lost when the process exits.

Examples:
  wb mock
  wb mock --listen :8080
  WORKBENCH_MOCK_LISTEN=:8080 wb mock`

const mockShortDesc string = "Run an in-memory workbench service"

type mockCommander struct {
	listen string
	debug  bool
}

func NewMockCmd() *cobra.Command {
	cmder := &mockCommander{}

	cmd := &cobra.Command{
		Use:   "mock",
		Short: mockShortDesc,
		Long:  mockLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, mockFlags, []string{config.FlagMockListen})
			cmder.listen = v.GetString("mock.listen")
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, mockFlags, config.FlagMockListen, &cmder.listen)

	return cmd
}

var mockFlags = config.FlagSet{
	config.FlagMockListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "mock.listen",
		Description: "Address to listen on",
	},
}

func (c *mockCommander) run() error {
	opts := []logger.Option{logger.WithPretty(true), logger.WithDebug(c.debug)}
	log := logger.New(opts...)

	server := mockservice.NewServer(mockservice.Config{ListenAddr: c.listen}, log)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("running mock service: %w", err)
		}
		return nil
	}
}
