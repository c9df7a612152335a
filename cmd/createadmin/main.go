// Command createadmin creates the first admin account, or promotes an existing account and resets its password.
//
//	createadmin -email admin@example.com -username admin
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/term"

	"smartstudy/internal/apperror"
	"smartstudy/internal/auth"
	"smartstudy/internal/config"
	"smartstudy/internal/database"
	"smartstudy/internal/database/migration"
	"smartstudy/internal/logger"
	"smartstudy/internal/repository/postgres"
	"smartstudy/internal/service"
	"smartstudy/internal/validation"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	username := flag.String("username", "admin", "username for a newly created account")
	password := flag.String("password", "", "password; prompted for when omitted")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(os.Stderr, cfg.LogLevel)

	if strings.TrimSpace(*email) == "" {
		flag.Usage()
		os.Exit(2)
	}

	pw := *password
	if pw == "" {
		var err error
		if pw, err = promptPassword(os.Stdin, os.Stderr); err != nil {
			log.Fatal().Err(err).Msg("failed to read password")
		}
	}

	sqlDB, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := migration.EnsureMigrated(ctx, sqlDB, log, cfg.Database.Host); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	db := database.WithSQLX(sqlDB)
	v := validation.New()
	users := service.NewUserService(
		postgres.NewUserPostgres(db),
		service.NewSettingsService(postgres.NewSettingsPostgres(db), v),
		auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL),
		v,
	)

	u, created, err := users.EnsureAdmin(ctx, service.RegisterInput{
		Username: *username,
		Email:    *email,
		Password: pw,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}

	if created {
		fmt.Printf("created admin %s <%s> (%s)\n", u.Username, u.Email, u.ID)
	} else {
		fmt.Printf("promoted %s <%s> to admin and reset the password\n", u.Username, u.Email)
	}
}

// promptPassword reads the password twice without echo when in is a terminal,
// otherwise it reads one line.
func promptPassword(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	fmt.Fprint(out, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func describe(err error) string {
	appErr := apperror.As(err)
	if len(appErr.Fields) == 0 {
		return appErr.Error()
	}
	var b strings.Builder
	b.WriteString(appErr.Message)
	for field, msg := range appErr.Fields {
		fmt.Fprintf(&b, "\n  %s: %s", field, msg)
	}
	return b.String()
}
