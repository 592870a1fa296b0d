package gdrive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/benchfetch/benchfetch/internal/output"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const tokenFile = ".benchfetch-token.json"

func getAccessTokenFromCredentials(credentialsFile string) (string, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", fmt.Errorf("unable to read credentials file: %v", err)
	}
	config, err := google.ConfigFromJSON(b, "https://www.googleapis.com/auth/drive.readonly")
	if err != nil {
		return "", fmt.Errorf("unable to parse client secret file: %v", err)
	}
	token, err := getOAuthToken(config)
	if err != nil {
		return "", fmt.Errorf("unable to get OAuth token: %v", err)
	}
	if !token.Valid() {
		if token.RefreshToken == "" {
			return "", errors.New("OAuth token is expired and cannot be refreshed")
		}
		tokenSource := config.TokenSource(context.Background(), token)
		newToken, err := tokenSource.Token()
		if err != nil {
			return "", fmt.Errorf("unable to refresh token: %v", err)
		}
		token = newToken
		if err := saveToken(tokenFile, token); err != nil {
			log.Warn().Str("op", "gdrive/auth").Msgf("unable to save refreshed token: %v", err)
		}
	}
	return token.AccessToken, nil
}

func getOAuthToken(config *oauth2.Config) (*oauth2.Token, error) {
	token, err := tokenFromFile(tokenFile)
	if err == nil {
		log.Debug().Str("op", "gdrive/auth").Msg("existing token retrieved")
		return token, nil
	}
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	output.PrintDetail("\nVisit this URL to get the authorization code:\n")
	fmt.Printf("%s\n", authURL)
	output.PrintDetail("\nAfter authorizing, enter the authorization code:")
	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %v", err)
	}
	token, err = config.Exchange(context.Background(), authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange auth code for token: %v", err)
	}
	if err := saveToken(tokenFile, token); err != nil {
		log.Warn().Str("op", "gdrive/auth").Msgf("unable to save new token: %v", err)
	}
	return token, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
