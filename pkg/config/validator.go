package config

import "fmt"

// Validator validates a resolved Config comprehensively with clear,
// section-scoped error messages, fail-fast in dependency order.
type Validator struct {
	cfg *Config
}

func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

func validate(cfg *Config) error {
	return NewValidator(cfg).ValidateAll()
}

func (v *Validator) ValidateAll() error {
	if err := v.validateServer(); err != nil {
		return err
	}
	if err := v.validateDatabase(); err != nil {
		return err
	}
	if err := v.validateSession(); err != nil {
		return err
	}
	if err := v.validateLLM(); err != nil {
		return err
	}
	if err := v.validateClassifier(); err != nil {
		return err
	}
	if err := v.validateAuth(); err != nil {
		return err
	}
	if err := v.validateRateLimit(); err != nil {
		return err
	}
	return nil
}

func (v *Validator) validateServer() error {
	if v.cfg.Server.Port <= 0 || v.cfg.Server.Port > 65535 {
		return NewValidationError("server", "port", fmt.Errorf("%w: %d", ErrInvalidValue, v.cfg.Server.Port))
	}
	return nil
}

func (v *Validator) validateDatabase() error {
	if v.cfg.Database.DSN == "" {
		return NewValidationError("database", "dsn", ErrMissingRequiredField)
	}
	if v.cfg.Database.MaxConns < v.cfg.Database.MinConns {
		return NewValidationError("database", "max_conns", fmt.Errorf("%w: max_conns must be >= min_conns", ErrInvalidValue))
	}
	return nil
}

// validateSession enforces the production/in-memory SessionStore guard: a
// non-dev deployment without Redis configured is a validation failure, not
// a silent fallback, since an in-memory SessionStore does not survive a
// restart or scale past one replica.
func (v *Validator) validateSession() error {
	if v.cfg.Session.TTL <= 0 {
		return NewValidationError("session", "ttl_seconds", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if !v.cfg.Redis.Enabled && isProduction() {
		return NewValidationError("redis", "enabled", fmt.Errorf("%w: redis is required outside dev/test environments", ErrInvalidValue))
	}
	if v.cfg.Redis.Enabled && v.cfg.Redis.Addr == "" {
		return NewValidationError("redis", "addr_env", ErrMissingRequiredField)
	}
	return nil
}

func (v *Validator) validateLLM() error {
	if v.cfg.LLM.Provider == "" {
		return NewValidationError("llm", "provider", ErrMissingRequiredField)
	}
	if v.cfg.LLM.APIKey == "" && isProduction() {
		return NewValidationError("llm", "api_key_env", ErrMissingRequiredField)
	}
	return nil
}

func (v *Validator) validateClassifier() error {
	if v.cfg.Classifier.ConfidenceFloor < 0 || v.cfg.Classifier.ConfidenceFloor > 1 {
		return NewValidationError("classifier", "confidence_floor", fmt.Errorf("%w: must be in [0,1]", ErrInvalidValue))
	}
	if v.cfg.Classifier.MaxTransferCount < 1 {
		return NewValidationError("classifier", "max_transfer_count", fmt.Errorf("%w: must be >= 1", ErrInvalidValue))
	}
	return nil
}

func (v *Validator) validateAuth() error {
	if len(v.cfg.Auth.HMACSecret) == 0 && isProduction() {
		return NewValidationError("auth", "hmac_secret_env", ErrMissingRequiredField)
	}
	return nil
}

func (v *Validator) validateRateLimit() error {
	if v.cfg.RateLimit.LoginPerMinute <= 0 {
		return NewValidationError("rate_limit", "login_per_minute", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	return nil
}
