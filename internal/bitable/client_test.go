// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package bitable_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/recall/internal/bitable"
	"github.com/openclaw/recall/internal/graph"
	recallerr "github.com/openclaw/recall/pkg/errors"
)

const (
	tokenPath  = "/open-apis/auth/v3/tenant_access_token/internal"
	insertPath = "/open-apis/bitable/v1/apps/appTok/tables/tbl1/records"
	searchPath = "/open-apis/bitable/v1/apps/appTok/tables/tbl1/records/search"
)

func testClient(t *testing.T, handler http.Handler) *bitable.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := bitable.NewClient(bitable.Config{
		Endpoint:  srv.URL,
		AppID:     "cli_app",
		AppSecret: "secret",
		AppToken:  "appTok",
		TableID:   "tbl1",
	})
	require.NoError(t, err)
	return c
}

func serveToken(t *testing.T, w http.ResponseWriter, r *http.Request) {
	t.Helper()
	var creds map[string]string
	require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
	assert.Equal(t, "cli_app", creds["app_id"])
	assert.Equal(t, "secret", creds["app_secret"])
	fmt.Fprint(w, `{"code":0,"msg":"ok","tenant_access_token":"t-token","expire":7200}`)
}

func TestClient_TokenExchangeAndBearer(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		serveToken(t, w, r)
	})
	mux.HandleFunc(searchPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"code":0,"msg":"ok","data":{"items":[]}}`)
	})

	c := testClient(t, mux)
	ctx := context.Background()

	_, err := c.SearchRecords(ctx, nil, 10)
	require.NoError(t, err)
	_, err = c.SearchRecords(ctx, nil, 10)
	require.NoError(t, err)

	// The token is cached across calls until near expiry.
	assert.Equal(t, int32(1), tokenCalls.Load())
}

func TestClient_BadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":10003,"msg":"invalid app_secret"}`)
	})

	c := testClient(t, mux)
	_, err := c.SearchRecords(context.Background(), nil, 10)
	require.Error(t, err)
	assert.True(t, recallerr.IsAuthFailure(err))
}

func TestClient_SearchFilterShape(t *testing.T) {
	var captured map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) { serveToken(t, w, r) })
	mux.HandleFunc(searchPath, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"code":0,"msg":"ok","data":{"items":[]}}`)
	})

	c := testClient(t, mux)
	conditions := []bitable.FilterCondition{
		{FieldName: "主语(Subject)", Operator: "is", Value: []string{"老板"}},
		{FieldName: "谓语(Predicate)", Operator: "is", Value: []string{"喜欢吃"}},
	}
	_, err := c.SearchRecords(context.Background(), conditions, 50)
	require.NoError(t, err)

	assert.Equal(t, float64(50), captured["page_size"])
	filter, ok := captured["filter"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "and", filter["conjunction"])
	conds, ok := filter["conditions"].([]any)
	require.True(t, ok)
	require.Len(t, conds, 2)
	first := conds[0].(map[string]any)
	assert.Equal(t, "主语(Subject)", first["field_name"])
	assert.Equal(t, "is", first["operator"])
	assert.Equal(t, []any{"老板"}, first["value"])
}

func TestClient_SearchWithoutConditionsOmitsFilter(t *testing.T) {
	var captured map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) { serveToken(t, w, r) })
	mux.HandleFunc(searchPath, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"code":0,"msg":"ok","data":{"items":[]}}`)
	})

	c := testClient(t, mux)
	_, err := c.SearchRecords(context.Background(), nil, 100)
	require.NoError(t, err)
	_, hasFilter := captured["filter"]
	assert.False(t, hasFilter)
}

func TestClient_APIErrorIsReadFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) { serveToken(t, w, r) })
	mux.HandleFunc(searchPath, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":1254045,"msg":"table not found"}`)
	})

	c := testClient(t, mux)
	_, err := c.SearchRecords(context.Background(), nil, 10)
	require.Error(t, err)
	assert.True(t, recallerr.IsReadFailure(err))
	assert.False(t, recallerr.IsAuthFailure(err))
}

func TestTripleBackend_InsertFields(t *testing.T) {
	var captured map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) { serveToken(t, w, r) })
	mux.HandleFunc(insertPath, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"code":0,"msg":"ok","data":{"record":{"record_id":"recXYZ","fields":{}}}}`)
	})

	be := bitable.NewTripleBackend(testClient(t, mux))
	id, err := be.Insert(context.Background(), graph.Triple{
		Subject: "老板", Predicate: "喜欢吃", Object: "川菜",
		Confidence: 0.95, Source: "对话",
	})
	require.NoError(t, err)
	assert.Equal(t, "recXYZ", id)

	fields, ok := captured["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "老板", fields["主语(Subject)"])
	assert.Equal(t, "喜欢吃", fields["谓语(Predicate)"])
	assert.Equal(t, "川菜", fields["宾语(Object)"])
	assert.Equal(t, 0.95, fields["置信度(Confidence)"])
	assert.Equal(t, "对话", fields["来源(Source)"])
	assert.NotZero(t, fields["创建时间"])
}

func TestTripleBackend_SearchDecodesRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) { serveToken(t, w, r) })
	mux.HandleFunc(searchPath, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":0,"msg":"ok","data":{"items":[
			{"record_id":"rec1","fields":{
				"主语(Subject)":"老板",
				"谓语(Predicate)":[{"text":"喜欢吃"}],
				"宾语(Object)":"川菜",
				"置信度(Confidence)":0.95,
				"来源(Source)":"对话",
				"创建时间":1756700000000}},
			{"record_id":"rec2","fields":{
				"主语(Subject)":"老板",
				"谓语(Predicate)":"在",
				"宾语(Object)":"北京"}}
		]}}`)
	})

	be := bitable.NewTripleBackend(testClient(t, mux))
	triples, err := be.Search(context.Background(), graph.Filter{Subject: "老板", Limit: 100})
	require.NoError(t, err)
	require.Len(t, triples, 2)

	assert.Equal(t, "rec1", triples[0].RecordID)
	assert.Equal(t, "喜欢吃", triples[0].Predicate) // rich-text segments flattened
	assert.InDelta(t, 0.95, triples[0].Confidence, 1e-9)
	assert.Equal(t, int64(1756700000000), triples[0].CreatedAt)

	// Missing confidence defaults to 1.0.
	assert.InDelta(t, 1.0, triples[1].Confidence, 1e-9)
	assert.Equal(t, "北京", triples[1].Object)
}

func TestProvision_CreatesAppAndTable(t *testing.T) {
	var tableFields []any
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) { serveToken(t, w, r) })
	mux.HandleFunc("/open-apis/bitable/v1/apps", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "记忆系统", body["name"])
		fmt.Fprint(w, `{"code":0,"msg":"ok","data":{"app":{"app_token":"appNew"}}}`)
	})
	mux.HandleFunc("/open-apis/bitable/v1/apps/appNew/tables", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		tableFields = body["fields"].([]any)
		fmt.Fprint(w, `{"code":0,"msg":"ok","data":{"table_id":"tblNew"}}`)
	})

	res, err := bitable.Provision(context.Background(), testClient(t, mux), "记忆系统")
	require.NoError(t, err)
	assert.Equal(t, "appNew", res.AppToken)
	assert.Equal(t, "tblNew", res.TableID)

	require.Len(t, tableFields, 6)
	first := tableFields[0].(map[string]any)
	assert.Equal(t, "主语(Subject)", first["field_name"])
	assert.Equal(t, float64(1), first["type"])
}
