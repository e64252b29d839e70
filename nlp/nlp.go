package nlp

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	language "cloud.google.com/go/language/apiv2"
	"cloud.google.com/go/language/apiv2/languagepb"
	"google.golang.org/api/option"
)

// languageClient a singleton languageClient instance.
var (
	languageClient *language.Client
	clientOnce     sync.Once
)

// maxTags caps how many entity-derived tags get attached to a report.
const maxTags = 5

// ExtractTags sends a report description to the Cloud Natural Language API
// and returns salient entity names as lowercase tags, most salient first.
func ExtractTags(client *language.Client, text string) ([]string, error) {
	ctx := context.Background()
	req := &languagepb.AnalyzeEntitiesRequest{
		Document: &languagepb.Document{
			Source: &languagepb.Document_Content{
				Content: text,
			},
			Type: languagepb.Document_PLAIN_TEXT,
		},
		EncodingType: languagepb.EncodingType_UTF8,
	}

	resp, err := client.AnalyzeEntities(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("AnalyzeEntities error: %w", err)
	}

	seen := make(map[string]bool)
	var tags []string
	for _, e := range resp.Entities {
		name := strings.ToLower(strings.TrimSpace(e.Name))
		if name == "" || seen[name] {
			continue
		}
		// Numbers and prices make noisy tags.
		switch e.Type {
		case languagepb.Entity_NUMBER, languagepb.Entity_PRICE, languagepb.Entity_DATE, languagepb.Entity_PHONE_NUMBER:
			continue
		}
		seen[name] = true
		tags = append(tags, name)
		if len(tags) >= maxTags {
			break
		}
	}
	return tags, nil
}

// initializes and returns a language client.
func InitLanguageClient() (*language.Client, error) {
	var err error

	clientOnce.Do(func() {
		// Decode credentials
		encodedCreds := os.Getenv("NATURAL_LANGUAGE_CREDENTIALS")
		creds, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			log.Fatalf("Failed to decode Natural Language credentials: %v", err)
		}

		opt := option.WithCredentialsJSON(creds)
		languageClient, err = language.NewClient(context.Background(), opt)
		if err != nil {
			log.Fatalf("Failed to create Natural Language client: %v", err)
		}
	})

	return languageClient, err
}

func CloseLanguageClient() {
	if languageClient != nil {
		languageClient.Close()
	}
}
