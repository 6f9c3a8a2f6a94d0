package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-v int      verification code validity, minutes
//	-w int      verification request window, minutes
//	-m int      max verification code requests per window
//	-i int      cleanup interval, minutes
//	-b int      bcrypt cost (0 selects the library default)
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-v", "-w", "-m", "-i", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")
	verificationCodeValidityDuration := fs.Int("v", int(config.VerificationCodeValidityDuration.Minutes()), "verification_code_validity_duration (in minutes)")
	verificationWindow := fs.Int("w", int(config.VerificationWindow.Minutes()), "verification_window (in minutes)")
	cleanupInterval := fs.Int("i", int(config.CleanupInterval.Minutes()), "cleanup_interval (in minutes)")

	fs.IntVar(&config.VerificationMaxRequests, "m", config.VerificationMaxRequests, "max verification code requests per window")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.VerificationCodeValidityDuration = time.Duration(*verificationCodeValidityDuration) * time.Minute
	config.VerificationWindow = time.Duration(*verificationWindow) * time.Minute
	config.CleanupInterval = time.Duration(*cleanupInterval) * time.Minute
}
