// Command anonvoted runs the registration session registry: a persistent
// commitment accumulator with its root history and nullifier registry,
// exposed over the HTTP API.
package main

import (
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/vocdoni/anonvote/api"
	"github.com/vocdoni/anonvote/log"
	"github.com/vocdoni/anonvote/state"
)

func main() {
	host := flag.String("host", "0.0.0.0", "API host to bind")
	port := flag.Int("port", 8080, "API port to bind")
	dataDir := flag.String("datadir", "./anonvote-data", "data directory for the persistent registry")
	logLevel := flag.String("loglevel", log.LogLevelInfo, "log level (debug, info, warn, error)")
	session := flag.String("session", "default", "registration session identifier")
	flag.Parse()
	log.Init(*logLevel, "stdout", nil)

	kv, err := metadb.New(db.TypePebble, *dataDir)
	if err != nil {
		log.Fatalf("could not open database at %s: %v", *dataDir, err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Errorf("could not close database: %v", err)
		}
	}()

	st, err := state.New(kv, []byte(*session))
	if err != nil {
		log.Fatalf("could not open session state: %v", err)
	}
	defer st.Close()

	if _, err := api.New(&api.APIConfig{
		Host:  *host,
		Port:  *port,
		State: st,
	}); err != nil {
		log.Fatalf("could not start API: %v", err)
	}
	log.Infow("registry running",
		"session", *session,
		"commitments", st.Size(),
		"root", st.Root().String())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
}
