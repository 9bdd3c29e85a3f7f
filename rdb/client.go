// Copyright 2025 The wfindex authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"wfindex/rdb/results"
)

const (
	MsgNewQuery                = "newQuery"
	DefaultQueueKey            = "wfindexQueue"
	DefaultResultChannelPrefix = "wfindexResults"
	DefaultQueryChannel        = "wfindexQueries"
	DefaultResultExpiration    = 10 * time.Minute
	connectionRetryInterval    = 2 * time.Second
)

var (
	ErrorEmptyQueue = errors.New("no queries in the queue")
)

// Query is a single job for a worker. Args is kept as raw JSON; the
// worker decodes it based on Func.
type Query struct {
	Channel string          `json:"channel"`
	Func    string          `json:"func"`
	Args    json.RawMessage `json:"args"`
}

func (q Query) ToJSON() (string, error) {
	ans, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	return string(ans), nil
}

func NewQuery(fn string, args any) (Query, error) {
	rawArgs, err := json.Marshal(args)
	if err != nil {
		return Query{}, fmt.Errorf("failed to serialize args for %s: %w", fn, err)
	}
	return Query{Func: fn, Args: rawArgs}, nil
}

func DecodeQuery(q string) (Query, error) {
	var ans Query
	err := json.Unmarshal([]byte(q), &ans)
	return ans, err
}

// Job argument types. These mirror the worker functions in the worker
// package.

type IngestSourcesArgs struct {
	// Sources limits the run to the named documents; empty means all
	// documents of the configured corpus directory.
	Sources []string `json:"sources"`
}

type WordformSearchArgs struct {
	Lemma          string `json:"lemma"`
	LemmaPrefix    string `json:"lemmaPrefix"`
	Form           string `json:"form"`
	UPoS           string `json:"upos"`
	FeaturePattern string `json:"featurePattern"`
	SortByFreq     bool   `json:"sortByFreq"`
	MaxItems       int    `json:"maxItems"`
}

type WordformExamplesArgs struct {
	Lemma string `json:"lemma"`
	Form  string `json:"form"`
	UPoS  string `json:"upos"`
	Feats string `json:"feats"`
	Limit int    `json:"limit"`
}

type CorpusStatsArgs struct{}

// ----------------

// WorkerResult is the envelope a worker publishes back. Value keeps the
// concrete result serialized so the envelope itself stays decodable
// without knowing the payload type.
type WorkerResult struct {
	ID           string          `json:"id"`
	ResultType   string          `json:"resultType"`
	Value        json.RawMessage `json:"value"`
	HasUserError bool            `json:"hasUserError"`
	ProcBegin    time.Time       `json:"procBegin"`
	ProcEnd      time.Time       `json:"procEnd"`
}

func CreateWorkerResult(res results.SerializableResult) (*WorkerResult, error) {
	value, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s result: %w", res.Type(), err)
	}
	return &WorkerResult{
		ID:           uuid.New().String(),
		ResultType:   res.Type().String(),
		Value:        value,
		HasUserError: res.Err() != nil,
	}, nil
}

// DecodeValue extracts the concrete payload out of a worker result
// envelope.
func DecodeValue[T any](w *WorkerResult) (T, error) {
	var ans T
	err := json.Unmarshal(w.Value, &ans)
	return ans, err
}

// ----------------

type Adapter struct {
	ctx                 context.Context
	c                   *redis.Client
	channelQuery        string
	channelResultPrefix string
	cachePath           string
}

func (a *Adapter) TestConnection(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		ctx, cancel := context.WithTimeout(a.ctx, connectionRetryInterval)
		err := a.c.Ping(ctx).Err()
		cancel()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Warn().Err(err).Msg("waiting for Redis connection")
		time.Sleep(connectionRetryInterval)
	}
}

func (a *Adapter) SomeoneListens(query Query) (bool, error) {
	cmd := a.c.PubSubNumSub(a.ctx, query.Channel)
	if cmd.Err() != nil {
		return false, fmt.Errorf("failed to check channel listeners: %w", cmd.Err())
	}
	return cmd.Val()[query.Channel] > 0, nil
}

// PublishQuery enqueues a job and returns a channel providing the
// worker's result once it arrives.
func (a *Adapter) PublishQuery(query Query) (<-chan *WorkerResult, error) {
	query.Channel = fmt.Sprintf("%s:%s", a.channelResultPrefix, uuid.New().String())
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		Msg("publishing query")

	msg, err := query.ToJSON()
	if err != nil {
		return nil, err
	}
	if err := a.c.LPush(a.ctx, DefaultQueueKey, msg).Err(); err != nil {
		return nil, err
	}
	sub := a.c.Subscribe(a.ctx, query.Channel)
	ans := make(chan *WorkerResult)

	// now we wait for response and send result via `ans`
	go func() {
		result := new(WorkerResult)

		item := <-sub.Channel()
		cmd := a.c.Get(a.ctx, item.Payload)
		if cmd.Err() != nil {
			attachErrorValue(result, cmd.Err())

		} else {
			err := json.Unmarshal([]byte(cmd.Val()), &result)
			if err != nil {
				attachErrorValue(result, err)
			}
		}
		ans <- result
		sub.Close()
		close(ans)
	}()
	return ans, a.c.Publish(a.ctx, a.channelQuery, MsgNewQuery).Err()
}

func attachErrorValue(result *WorkerResult, err error) {
	value, err2 := json.Marshal(results.ErrorResult{Error: err.Error()})
	if err2 != nil {
		value = []byte("{}")
	}
	result.ResultType = results.ResultTypeError.String()
	result.Value = value
	result.HasUserError = false
}

func (a *Adapter) DequeueQuery() (Query, error) {
	cmd := a.c.RPop(a.ctx, DefaultQueueKey)
	if errors.Is(cmd.Err(), redis.Nil) {
		return Query{}, ErrorEmptyQueue

	} else if cmd.Err() != nil {
		return Query{}, fmt.Errorf("failed to dequeue query: %w", cmd.Err())
	}
	q, err := DecodeQuery(cmd.Val())
	if err != nil {
		return Query{}, fmt.Errorf("failed to deserialize query: %w", err)
	}
	return q, nil
}

func (a *Adapter) PublishResult(channelName string, value *WorkerResult) error {
	log.Debug().
		Str("channel", channelName).
		Str("resultType", value.ResultType).
		Msg("publishing result")
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}
	a.c.Set(a.ctx, channelName, string(data), DefaultResultExpiration)
	return a.c.Publish(a.ctx, channelName, channelName).Err()
}

func (a *Adapter) Subscribe() <-chan *redis.Message {
	sub := a.c.Subscribe(a.ctx, a.channelQuery)
	return sub.Channel()
}

func NewAdapter(ctx context.Context, conf *Conf) *Adapter {
	chRes := conf.ChannelResultPrefix
	chQuery := conf.ChannelQuery
	if chRes == "" {
		chRes = DefaultResultChannelPrefix
		log.Warn().
			Str("channel", chRes).
			Msg("Redis channel for results not specified, using default")
	}
	if chQuery == "" {
		chQuery = DefaultQueryChannel
		log.Warn().
			Str("channel", chQuery).
			Msg("Redis channel for queries not specified, using default")
	}

	ans := &Adapter{
		c: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", conf.Host, conf.Port),
			Password: conf.Password,
			DB:       conf.DB,
		}),
		ctx:                 ctx,
		channelQuery:        chQuery,
		channelResultPrefix: chRes,
		cachePath:           conf.CachePath,
	}
	return ans
}
