// Package config loads the calassist settings file.
//
// The settings file is JSON with the keys calendar_id, credentials_file,
// timezone, openAI_API_key and assistant_id. An optional .env file is read
// first and a small set of environment variables override file values:
//
//	OPENAI_API_KEY            -> openAI_API_key
//	CALASSIST_ASSISTANT_ID    -> assistant_id
//	CALASSIST_CALENDAR_ID     -> calendar_id
//	CALASSIST_TIMEZONE        -> timezone
//	CALASSIST_CREDENTIALS     -> credentials_file
//
// Every failure is reported as an error wrapping ErrConfig.
package config
