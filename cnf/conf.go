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

package cnf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"

	"wfindex/index"
	"wfindex/rdb"
	"wfindex/storage"
)

const (
	dfltServerWriteTimeoutSecs = 30
	dfltWorkerJobTimeoutSecs   = 60
	dfltTimeZone               = "Europe/Bratislava"
)

// Conf is a global configuration of the app
type Conf struct {
	ListenAddress          string           `json:"listenAddress"`
	PublicURL              string           `json:"publicUrl"`
	ListenPort             int              `json:"listenPort"`
	ServerReadTimeoutSecs  int              `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int              `json:"serverWriteTimeoutSecs"`
	WorkerJobTimeoutSecs   int              `json:"workerJobTimeoutSecs"`
	CorsAllowedOrigins     []string         `json:"corsAllowedOrigins"`
	AuthHeaderName         string           `json:"authHeaderName"`
	AuthTokens             []string         `json:"authTokens"`
	SourcesDir             string           `json:"sourcesDir"`
	Index                  *index.Conf      `json:"index"`
	DB                     *storage.Conf    `json:"db"`
	Redis                  *rdb.Conf        `json:"redis"`
	LogFile                string           `json:"logFile"`
	LogLevel               logging.LogLevel `json:"logLevel"`
	TimeZone               string           `json:"timeZone"`

	srcPath string
}

func (conf *Conf) IsDebugMode() bool {
	return conf.LogLevel == "debug"
}

func (conf *Conf) TimezoneLocation() *time.Location {
	// we can ignore the error here as ValidateAndDefaults
	// tries to load the location and reports a possible error
	loc, _ := time.LoadLocation(conf.TimeZone)
	return loc
}

func (conf *Conf) WorkerJobTimeout() time.Duration {
	return time.Duration(conf.WorkerJobTimeoutSecs) * time.Second
}

// GetSourcePath returns an absolute path of a file
// the config was loaded from.
func (conf *Conf) GetSourcePath() string {
	if filepath.IsAbs(conf.srcPath) {
		return conf.srcPath
	}
	var cwd string
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "[failed to get working dir]"
	}
	return filepath.Join(cwd, conf.srcPath)
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	var conf Conf
	conf.srcPath = path
	err = json.Unmarshal(rawData, &conf)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	return &conf
}

func ValidateAndDefaults(conf *Conf) {
	if conf.ServerWriteTimeoutSecs == 0 {
		conf.ServerWriteTimeoutSecs = dfltServerWriteTimeoutSecs
		log.Warn().Msgf(
			"serverWriteTimeoutSecs not specified, using default: %d",
			dfltServerWriteTimeoutSecs,
		)
	}
	if conf.WorkerJobTimeoutSecs == 0 {
		conf.WorkerJobTimeoutSecs = dfltWorkerJobTimeoutSecs
		log.Warn().Msgf(
			"workerJobTimeoutSecs not specified, using default: %d",
			dfltWorkerJobTimeoutSecs,
		)
	}
	if conf.PublicURL == "" {
		conf.PublicURL = fmt.Sprintf("http://%s", conf.ListenAddress)
		log.Warn().Str("address", conf.PublicURL).Msg("publicUrl not set, using listenAddress")
	}
	if conf.Index == nil {
		conf.Index = &index.Conf{}
	}
	if conf.Index.MaxExamplesPerEntry == 0 {
		conf.Index.MaxExamplesPerEntry = index.DfltMaxExamplesPerEntry
		log.Warn().Msgf(
			"index.maxExamplesPerEntry not specified, using default: %d",
			index.DfltMaxExamplesPerEntry,
		)
	}
	if conf.Index.NumShards == 0 {
		conf.Index.NumShards = index.DfltNumShards
		log.Warn().Msgf(
			"index.numShards not specified, using default: %d",
			index.DfltNumShards,
		)
	}
	if conf.DB == nil || conf.DB.DBPath == "" {
		log.Fatal().Msg("db.dbPath must be specified")
		return
	}
	if conf.SourcesDir == "" {
		log.Warn().Msg("sourcesDir not specified - ingestion jobs will fail")
	}
	if conf.Redis == nil {
		log.Warn().Msg("redis section not specified - server and worker modes will not start")
	}
	if conf.TimeZone == "" {
		conf.TimeZone = dfltTimeZone
		log.Warn().
			Str("timeZone", dfltTimeZone).
			Msg("time zone not specified, using default")
	}
	if _, err := time.LoadLocation(conf.TimeZone); err != nil {
		log.Fatal().Err(err).Msg("invalid time zone")
	}
}
