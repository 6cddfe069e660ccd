package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/celestix/gotgproto/storage"
	"github.com/glebarez/sqlite"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth/qrlogin"
	"github.com/gotd/td/tg"
	"github.com/mdp/qrterminal/v3"
	"gorm.io/gorm"

	"github.com/AABur/tgfolder-export/internal/config"
	"github.com/AABur/tgfolder-export/internal/logger"
)

// QRLogin runs the QR authentication flow and stores the resulting session
// in the sqlite session file at sessionPath, where the regular client picks
// it up on the next Dial.
//
// It uses a raw td/telegram client with in-memory session storage: unlike
// gotgproto's NewClient, this does not attempt interactive CLI auth.
func QRLogin(ctx context.Context, cfg *config.Config, sessionPath string, log *logger.Logger) error {
	memStorage := &session.StorageMemory{}
	// dispatcher must be constructed, a zero value panics on handler registration
	dispatcher := tg.NewUpdateDispatcher()

	client := telegram.NewClient(cfg.AppID, cfg.AppHash, telegram.Options{
		SessionStorage: memStorage,
		UpdateHandler:  &dispatcher,
	})

	fmt.Println("Scan the QR code with Telegram on your phone:")
	fmt.Println("Settings > Devices > Link Desktop Device")
	fmt.Println()

	var sessionData *session.Data
	err := client.Run(ctx, func(ctx context.Context) error {
		loggedIn := qrlogin.OnLoginToken(&dispatcher)

		_, authErr := client.QR().Auth(ctx, loggedIn, func(_ context.Context, token qrlogin.Token) error {
			log.Debug().Str("url", token.URL()).Msg("telegram: QR token generated")
			qrterminal.GenerateHalfBlock(token.URL(), qrterminal.L, os.Stdout)
			return nil
		})
		if authErr != nil {
			return authErr
		}

		log.Info().Msg("telegram: QR auth success, capturing session")
		loader := session.Loader{Storage: memStorage}
		sessionData, authErr = loader.Load(ctx)
		return authErr
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		return fmt.Errorf("QR auth flow failed: %w", err)
	}
	if sessionData == nil {
		return fmt.Errorf("session data is nil after successful auth")
	}

	log.Info().Str("path", sessionPath).Msg("telegram: saving session")
	return saveSessionFile(sessionData, sessionPath)
}

// saveSessionFile writes gotd session data into the gotgproto sqlite storage
// schema so the persistent client can reuse it.
func saveSessionFile(data *session.Data, sessionPath string) error {
	sess, err := convertToStorageSession(data)
	if err != nil {
		return err
	}

	db, err := gorm.Open(sqlite.Open(sessionPath), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}
	if err := db.AutoMigrate(&storage.Session{}); err != nil {
		return fmt.Errorf("migrate session schema: %w", err)
	}
	if err := db.Save(sess).Error; err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// convertToStorageSession converts gotd session.Data to gotgproto's storage
// model, which expects the raw JSON bytes in its Data field.
func convertToStorageSession(data *session.Data) (*storage.Session, error) {
	if data == nil {
		return nil, fmt.Errorf("session data is nil")
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal session data: %w", err)
	}

	return &storage.Session{
		Version: storage.LatestVersion,
		Data:    dataJSON,
	}, nil
}
