package gcp

import (
	"strings"

	"google.golang.org/api/option"

	"github.com/yungbote/doccontrol-backend/internal/platform/envutil"
)

// ClientOptionsFromEnv accepts either inline JSON credentials or a path.
func ClientOptionsFromEnv() []option.ClientOption {
	creds := envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", "", nil)
	if creds == "" {
		creds = envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "", nil)
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
