// Package server runs the accept loop that turns incoming TCP connections
// into conn.Connection instances, and owns the shared roster and entity
// id counter handed to each one.
package server

import (
	"context"
	"errors"
	"log"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"mcserver765/internal/conn"
	"mcserver765/internal/config"
	"mcserver765/internal/session"
	"mcserver765/internal/worldprovider"
)

// Server accepts connections and supervises their lifetimes.
type Server struct {
	cfg      *config.Config
	world    worldprovider.Provider
	roster   *session.Roster
	nextID   int64
}

// New returns a Server ready to Run.
func New(cfg *config.Config, world worldprovider.Provider) *Server {
	return &Server{
		cfg:    cfg,
		world:  world,
		roster: session.NewRoster(),
	}
}

// Run listens on cfg.ListenAddress until ctx is canceled, spawning one
// goroutine per accepted connection joined under g.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return err
	}
	defer listener.Close()
	log.Printf("server: listening on %s (protocol %d, %s)", s.cfg.ListenAddress, s.cfg.ProtocolID, s.cfg.VersionName)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		listener.Close()
		return nil
	})

	for {
		netConn, err := listener.Accept()
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return g.Wait()
			}
			var ne net.Error
			if errors.As(err, &ne) && !ne.Temporary() {
				return err
			}
			continue
		}
		g.Go(func() error {
			s.serveConn(ctx, netConn)
			return nil
		})
	}
}

func (s *Server) serveConn(ctx context.Context, netConn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("server: recovered from panic in connection handler: %v", r)
			netConn.Close()
		}
	}()

	c := conn.New(netConn, conn.Options{
		ProtocolVersion: s.cfg.ProtocolID,
		VersionName:     s.cfg.VersionName,
		Motd:            s.cfg.Motd,
		MaxPlayers:      s.cfg.MaxPlayers,
		DimensionName:   s.cfg.DimensionName,
		KeepAliveEvery:  time.Duration(s.cfg.KeepAliveIntervalSeconds) * time.Second,
		KeepAliveMisses: s.cfg.KeepAliveTimeoutTicks,
		World:           s.world,
		Roster:          s.roster,
		NextEntityID:    s.nextEntityID,
	})
	if err := c.Serve(ctx); err != nil {
		log.Printf("server: connection from %s ended: %v", netConn.RemoteAddr(), err)
	}
}

func (s *Server) nextEntityID() int32 {
	return int32(atomic.AddInt64(&s.nextID, 1))
}
