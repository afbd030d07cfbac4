package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsphweid/noterelay/backend"
	"github.com/jsphweid/noterelay/constants"
	"github.com/jsphweid/noterelay/logging"
	"github.com/jsphweid/noterelay/mirror"
	"github.com/jsphweid/noterelay/persist"
	"github.com/jsphweid/noterelay/protocol"
	"github.com/jsphweid/noterelay/server"
	"github.com/jsphweid/noterelay/session"
	"github.com/jsphweid/noterelay/track"
	"github.com/spf13/cobra"
)

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (default $RELAY_PORT or 5000)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the relay",
	Long:  `Runs the relay: websocket for the browser, /midi_ready and /python_port for the backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func newMirror() (mirror.Uploader, error) {
	bucket := constants.GetMirrorBucket()
	if bucket == "" {
		return nil, nil
	}
	m, err := mirror.NewS3Mirror(mirror.Options{
		Bucket:   bucket,
		Key:      constants.GetMirrorKey(),
		Region:   constants.GetMirrorRegion(),
		Endpoint: constants.GetMirrorEndpoint(),
	})
	if err != nil {
		return nil, err
	}
	logging.WithField("bucket", bucket).Info("mirroring recordings to s3")
	return m, nil
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	uploader, err := newMirror()
	if err != nil {
		return err
	}

	sess := session.New(constants.GetBackendPort())
	h := protocol.New(protocol.Options{
		Session: sess,
		Tracks:  track.New(track.DefaultMetadata()),
		Persister: persist.NewSequencer(persist.Options{
			PrimaryPath: constants.GetRecordingPath(),
			BackendPath: constants.GetBackendRecordingPath(),
			Pause:       constants.GetWritePause(),
			Mirror:      uploader,
		}),
		Backend:  backend.NewClient(constants.GetBackendHost(), sess.Port),
		Defaults: track.DefaultMetadata(),
	})

	port := servePort
	if port == 0 {
		port = constants.GetRelayPort()
	}
	s := server.New(h, server.Options{
		StaticDir:      constants.GetStaticDir(),
		AllowedOrigins: constants.GetAllowedOrigins(),
	})
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%v", port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		logging.Info("shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		httpServer.Shutdown(shutdownCtx)
	}()

	logging.WithField("port", port).Info("listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	h.Wait()
	return nil
}
