package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"ndara/internal/config"
	"ndara/internal/models"
	"ndara/internal/utils"
	"ndara/internal/utils/crypto"
	"ndara/internal/utils/logger"

	"github.com/joho/godotenv"
)

// Developer CLI: mints test tokens and signs webhook bodies against the
// local configuration.
func main() {
	var log = logger.New("helper")
	log.Info("🔑 Starting token and signature helper CLI")

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			_ = log.Error("❌ Failed to load environment variables", err)
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		_ = log.Error("❌ Failed to load configuration", err)
		return
	}

	var keys *crypto.KeyPair
	if cfg.Crypto.PrivateKey != "" {
		keys, err = crypto.LoadKeys(cfg.Crypto.PrivateKey)
		if err != nil {
			_ = log.Error("❌ Failed to initialize keys", err)
			return
		}
	}

	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	for {
		choice := prompt("Enter 't' for an HS256 token, 'r' for an RS256 token, 'w' to sign a webhook body, 's' for a secret, or 'q' to quit: ")

		switch choice {
		case "q":
			log.Info("👋 Exiting helper CLI")
			return
		case "t", "r":
			userID := prompt("User ID: ")
			role := prompt("Role (admin, instructor, student): ")
			if role == "" {
				role = models.RoleStudent
			}
			claims := utils.NewClaims(userID, "", role, 24*time.Hour)

			var token string
			if choice == "t" {
				token, err = utils.GenerateJWT(claims, cfg.JWT.Secret)
			} else {
				token, err = keys.Sign(claims)
			}
			if err != nil {
				_ = log.Error("❌ Token generation failed", err)
				continue
			}
			log.Success("✅ Token: %s", token)
		case "w":
			body := prompt("Webhook body (single line JSON): ")
			if cfg.Payments.MonerooWebhookSecret == "" {
				log.Warn("⚠️ MONEROO_WEBHOOK_SECRET is empty, signatures are not checked")
				continue
			}
			log.Success("✅ %s: %s", "X-Moneroo-Signature", crypto.ComputeWebhookSignature([]byte(body), cfg.Payments.MonerooWebhookSecret))
		case "s":
			secret, err := utils.GenerateSecret(32)
			if err != nil {
				_ = log.Error("❌ Secret generation failed", err)
				continue
			}
			log.Success("✅ Secret: %s", secret)
		default:
			log.Warn("⚠️ Invalid choice. Please enter 't', 'r', 'w', 's' or 'q'.")
		}
	}
}
