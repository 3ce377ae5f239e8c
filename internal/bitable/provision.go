// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package bitable

import (
	"context"
	"fmt"

	recallerr "github.com/openclaw/recall/pkg/errors"
)

// Bitable field type codes.
const (
	fieldTypeText     = 1
	fieldTypeNumber   = 2
	fieldTypeDateTime = 5
)

// ProvisionResult is the output of Provision: the identifiers a config
// needs to address the new table.
type ProvisionResult struct {
	AppToken string
	TableID  string
}

type createAppRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	FolderToken string `json:"folder_token"`
}

type createAppResponse struct {
	App struct {
		AppToken string `json:"app_token"`
	} `json:"app"`
}

type fieldSpec struct {
	FieldName string         `json:"field_name"`
	Type      int            `json:"type"`
	Property  map[string]any `json:"property"`
}

type createTableRequest struct {
	Table struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"table"`
	Fields []fieldSpec `json:"fields"`
}

type createTableResponse struct {
	TableID string `json:"table_id"`
}

// Provision creates a fresh Bitable app with the knowledge graph table and
// returns the tokens to store in config. The client's AppToken and TableID
// are ignored; only its credentials are used.
func Provision(ctx context.Context, c *Client, appName string) (ProvisionResult, error) {
	if appName == "" {
		appName = "Recall Knowledge Graph"
	}

	var appOut createAppResponse
	appReq := createAppRequest{
		Name:        appName,
		Description: "Subject-Predicate-Object triple store",
	}
	if err := c.call(ctx, "/open-apis/bitable/v1/apps", appReq, &appOut); err != nil {
		if recallerr.IsAuthFailure(err) {
			return ProvisionResult{}, err
		}
		return ProvisionResult{}, recallerr.Wrap(err, recallerr.CodeGraphBackendWriteFailure, "creating bitable app")
	}
	if appOut.App.AppToken == "" {
		return ProvisionResult{}, recallerr.New(recallerr.CodeGraphBackendWriteFailure,
			"app creation returned no app_token")
	}

	var tableReq createTableRequest
	tableReq.Table.Name = "知识图谱"
	tableReq.Table.Description = "存储Subject-Predicate-Object三元组"
	tableReq.Fields = []fieldSpec{
		{FieldName: FieldSubject, Type: fieldTypeText, Property: map[string]any{}},
		{FieldName: FieldPredicate, Type: fieldTypeText, Property: map[string]any{}},
		{FieldName: FieldObject, Type: fieldTypeText, Property: map[string]any{}},
		{FieldName: FieldConfidence, Type: fieldTypeNumber, Property: map[string]any{"formatter": "0.00"}},
		{FieldName: FieldSource, Type: fieldTypeText, Property: map[string]any{}},
		{FieldName: FieldCreatedAt, Type: fieldTypeDateTime, Property: map[string]any{
			"date_formatter": "yyyy-MM-dd HH:mm", "auto_fill": true,
		}},
	}

	var tableOut createTableResponse
	path := fmt.Sprintf("/open-apis/bitable/v1/apps/%s/tables", appOut.App.AppToken)
	if err := c.call(ctx, path, tableReq, &tableOut); err != nil {
		if recallerr.IsAuthFailure(err) {
			return ProvisionResult{}, err
		}
		return ProvisionResult{}, recallerr.Wrap(err, recallerr.CodeGraphBackendWriteFailure, "creating knowledge graph table")
	}
	if tableOut.TableID == "" {
		return ProvisionResult{}, recallerr.New(recallerr.CodeGraphBackendWriteFailure,
			"table creation returned no table_id")
	}

	return ProvisionResult{AppToken: appOut.App.AppToken, TableID: tableOut.TableID}, nil
}
