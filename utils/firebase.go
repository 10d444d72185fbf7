// utils/firebase.go
package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"pcohire/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var FCMClient *messaging.Client

// FirebaseInit initializes the Firebase App and Messaging client from the
// configured service account file.
func FirebaseInit(ctx context.Context) (*messaging.Client, error) {
	path := config.AppConfig.FirebaseCredentialsPath
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("firebase: cannot read credentials %s: %w", path, err)
	}
	var sa config.ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("firebase: invalid credentials file: %w", err)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: sa.ProjectID}, option.WithCredentialsJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}

	GetLogger().Sugar().Infof("firebase: messaging ready for project %s (%s)", sa.ProjectID, sa.ClientEmail)
	FCMClient = client
	return client, nil
}
