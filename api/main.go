package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

const version = "1.0.0"

type config struct {
	port int
	env  string
	db   struct {
		dsn                string
		maxOpenConnections int
		maxIdleConnections int
		maxIdleTime        time.Duration
	}
	jwt struct {
		secret string
		ttl    time.Duration
	}
	cors struct {
		trustedOrigins []string
	}
}

type application struct {
	config  config
	storage *storage
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	var cfg config
	flag.IntVar(&cfg.port, "port", 3000, "Server Port")
	flag.StringVar(&cfg.env, "env", "development", "Environment [development|production]")

	flag.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.db.maxOpenConnections, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.IntVar(&cfg.db.maxIdleConnections, "db-max-idle-conns", 25, "PostgreSQL max idle connections")
	var maxIdleTime string
	flag.StringVar(&maxIdleTime, "db-max-idle-time", "15m", "PostgreSQL max connection idle time")

	flag.StringVar(&cfg.jwt.secret, "jwt-secret", os.Getenv("JWT_SECRET"), "JWT signing secret")
	var jwtTTL string
	flag.StringVar(&jwtTTL, "jwt-ttl", "24h", "JWT time to live")

	var trustedOrigins string
	flag.StringVar(&trustedOrigins, "cors-trusted-origins", os.Getenv("CORS_TRUSTED_ORIGINS"), "CORS trusted origins (space separated)")
	flag.Parse()

	d, err := time.ParseDuration(maxIdleTime)
	if err != nil {
		cfg.db.maxIdleTime = 15 * time.Minute
		log.Printf(`invalid value %s for flag "db-max-idle-time" defaulting to %s`, maxIdleTime, cfg.db.maxIdleTime)
	} else {
		cfg.db.maxIdleTime = d
	}

	d, err = time.ParseDuration(jwtTTL)
	if err != nil {
		cfg.jwt.ttl = 24 * time.Hour
		log.Printf(`invalid value %s for flag "jwt-ttl" defaulting to %s`, jwtTTL, cfg.jwt.ttl)
	} else {
		cfg.jwt.ttl = d
	}

	cfg.cors.trustedOrigins = strings.Fields(trustedOrigins)

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("established a connection with database")

	err = runMigrations(context.Background(), db)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.jwt.secret == "" {
		secret := make([]byte, 32)
		_, err = rand.Read(secret[:])
		if err != nil {
			log.Fatal(err)
		}
		cfg.jwt.secret = string(secret)
		log.Println("JWT_SECRET not set, using an ephemeral secret; tokens will not survive a restart")
	}

	app := &application{
		config:  cfg,
		storage: newStorage(db),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.port),
		Handler:      composeRoutes(app),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Printf("Starting %s server on port %d\n", cfg.env, cfg.port)
	err = srv.ListenAndServe()
	log.Fatal(err)
}
