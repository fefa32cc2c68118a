package models

import "time"

// Config represents the application configuration
type Config struct {
	LogLevel   string       `yaml:"logLevel"`
	Email      EmailConfig  `yaml:"email"`
	Filter     FilterConfig `yaml:"filter"`
	Label      string       `yaml:"label"`
	MarkAsRead bool         `yaml:"markAsRead"`
	Output     string       `yaml:"output"`
}

// EmailConfig represents IMAP email configuration
type EmailConfig struct {
	Imap        string        `yaml:"imap"`
	Login       string        `yaml:"login"`
	Password    string        `yaml:"password"`
	RefreshTime time.Duration `yaml:"refreshTime"`
	MailBox     string        `yaml:"mailbox"`
}

// FilterConfig narrows which unseen messages are picked up on each poll
type FilterConfig struct {
	From       string `yaml:"from"`
	MaxResults int    `yaml:"maxResults"`
}
