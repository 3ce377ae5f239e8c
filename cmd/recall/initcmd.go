// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/openclaw/recall/internal/bitable"
	"github.com/openclaw/recall/internal/config"
	recallerr "github.com/openclaw/recall/pkg/errors"
)

// keyringService is the keyring service name under which Recall stores
// secrets.
const keyringService = "recall"

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Provision the knowledge graph table",
		Long:  "Create a fresh Bitable app with the knowledge graph table, store the app secret in the OS keyring, and record the new tokens in the config file.",
		RunE:  runInit,
	}

	cmd.Flags().String("app-id", "", "Feishu application ID")
	cmd.Flags().String("app-secret", "", "Feishu application secret")
	cmd.Flags().String("name", "Recall Knowledge Graph", "name for the new Bitable app")

	_ = cmd.MarkFlagRequired("app-id")
	_ = cmd.MarkFlagRequired("app-secret")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	appID, _ := cmd.Flags().GetString("app-id")
	appSecret, _ := cmd.Flags().GetString("app-secret")
	appName, _ := cmd.Flags().GetString("name")

	endpoint := bitable.DefaultEndpoint
	if cfg, err := config.FromViper(viper.GetViper()); err == nil && cfg.Graph.Endpoint != "" {
		endpoint = cfg.Graph.Endpoint
	}

	client, err := bitable.NewClient(bitable.Config{
		Endpoint:  endpoint,
		AppID:     appID,
		AppSecret: appSecret,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "Creating Bitable app and knowledge graph table...")

	res, err := bitable.Provision(cmd.Context(), client, appName)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Created app %s with table %s\n", res.AppToken, res.TableID)

	// The secret goes to the keyring; the config file only carries a
	// reference to it.
	secretRef := "keyring://" + keyringService + "/feishu_app_secret"
	if err := secretStoreFactory().Store(keyringService, "feishu_app_secret", appSecret); err != nil {
		return err
	}

	cfgPath, err := writeGraphConfig(cmd, appID, secretRef, res)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Wrote graph settings to %s\n", cfgPath)
	return nil
}

// writeGraphConfig merges the provisioned identifiers into the config file,
// preserving any other settings already present.
func writeGraphConfig(cmd *cobra.Command, appID, secretRef string, res bitable.ProvisionResult) (string, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultConfigPath()
		if err != nil {
			return "", err
		}
	}

	doc := map[string]any{}
	if raw, err := os.ReadFile(cfgPath); err == nil {
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return "", recallerr.Errorf(recallerr.CodeConfigLoadReadFailure,
				"parsing existing config %s: %w", cfgPath, err)
		}
	}
	if doc == nil {
		doc = map[string]any{}
	}

	graphSection, _ := doc["graph"].(map[string]any)
	if graphSection == nil {
		graphSection = map[string]any{}
	}
	graphSection["app_id"] = appID
	graphSection["app_secret"] = secretRef
	graphSection["app_token"] = res.AppToken
	graphSection["table_id"] = res.TableID
	doc["graph"] = graphSection

	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", recallerr.Errorf(recallerr.CodeCLISetupFailure, "encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o700); err != nil {
		return "", recallerr.Errorf(recallerr.CodeCLISetupFailure, "creating config directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		return "", recallerr.Errorf(recallerr.CodeCLISetupFailure, "writing config %s: %w", cfgPath, err)
	}

	return cfgPath, nil
}
