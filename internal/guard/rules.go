package guard

// DefaultRules returns the default set of blocked-content rules.
// Credential patterns follow common industry detection rules; shell and
// SQL patterns target commands no drafted action should ever carry.
func DefaultRules() []Rule {
	return []Rule{
		// Credentials
		{
			ID:          "generic-api-key",
			Description: "Generic API Key",
			Pattern:     `(?i)(?:api[_-]?key|apikey)\s*[:=]\s*['"]?([A-Za-z0-9_\-]{16,64})['"]?`,
			Keywords:    []string{"api", "key"},
			Category:    "credential",
			Severity:    "high",
			Blocking:    true,
		},
		{
			ID:          "generic-secret",
			Description: "Generic Secret",
			Pattern:     `(?i)(?:secret|password|passwd|pwd)\s*[:=]\s*['"]?([^\s'"]{8,})['"]?`,
			Keywords:    []string{"secret", "password"},
			Category:    "credential",
			Severity:    "high",
			Blocking:    true,
		},
		{
			ID:          "private-key",
			Description: "Private Key",
			Pattern:     `-----BEGIN (?:RSA |DSA |EC |OPENSSH |PGP )?PRIVATE KEY(?:[- ]BLOCK)?-----`,
			Category:    "credential",
			Severity:    "high",
			Blocking:    true,
		},
		{
			ID:          "aws-access-key-id",
			Description: "AWS Access Key ID",
			Pattern:     `(?i)(A3T[A-Z0-9]|AKIA|AGPA|AIDA|AROA|AIPA|ANPA|ANVA|ASIA)[A-Z0-9]{16}`,
			Keywords:    []string{"aws", "access", "key"},
			Category:    "credential",
			Severity:    "high",
			Blocking:    true,
		},
		{
			ID:          "github-token",
			Description: "GitHub Access Token",
			Pattern:     `(?:ghp|gho|ghu|ghs)_[A-Za-z0-9]{36}`,
			Category:    "credential",
			Severity:    "high",
			Blocking:    true,
		},
		{
			ID:          "bearer-token",
			Description: "Bearer Token in Authorization Header",
			Pattern:     `(?i)(?:authorization|bearer)\s*[:=]\s*['"]?bearer\s+([A-Za-z0-9_\-\.]{20,})['"]?`,
			Keywords:    []string{"authorization", "bearer"},
			Category:    "credential",
			Severity:    "medium",
			Blocking:    true,
		},
		{
			ID:          "jwt",
			Description: "JSON Web Token",
			Pattern:     `eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*`,
			Category:    "credential",
			Severity:    "medium",
			Blocking:    false,
		},
		{
			ID:          "database-url",
			Description: "Database Connection URL with credentials",
			Pattern:     `(?i)(?:postgres|mysql|mongodb|redis|amqp)://[^:]+:[^@]+@[^\s]+`,
			Keywords:    []string{"database", "db", "connection"},
			Category:    "credential",
			Severity:    "high",
			Blocking:    true,
		},

		// Destructive shell
		{
			ID:          "shell-rm-rf",
			Description: "Recursive filesystem removal",
			Pattern:     `(?i)\brm\s+(-[a-z]*r[a-z]*f|-[a-z]*f[a-z]*r)\b`,
			Category:    "shell",
			Severity:    "high",
			Blocking:    true,
		},
		{
			ID:          "shell-sudo-rm",
			Description: "Privileged file removal",
			Pattern:     `(?i)\bsudo\s+rm\b`,
			Category:    "shell",
			Severity:    "high",
			Blocking:    true,
		},
		{
			ID:          "shell-mkfs",
			Description: "Filesystem format command",
			Pattern:     `(?i)\bmkfs(\.[a-z0-9]+)?\b`,
			Category:    "shell",
			Severity:    "high",
			Blocking:    true,
		},
		{
			ID:          "shell-dd-device",
			Description: "Raw write to block device",
			Pattern:     `(?i)\bdd\s+[^\n]*of=/dev/`,
			Category:    "shell",
			Severity:    "high",
			Blocking:    true,
		},
		{
			ID:          "shell-fork-bomb",
			Description: "Shell fork bomb",
			Pattern:     `:\(\)\s*\{\s*:\|:\s*&\s*\}\s*;\s*:`,
			Category:    "shell",
			Severity:    "high",
			Blocking:    true,
		},
		{
			ID:          "shell-curl-pipe-sh",
			Description: "Remote script piped to shell",
			Pattern:     `(?i)\b(?:curl|wget)\b[^\n|]*\|\s*(?:sudo\s+)?(?:ba)?sh\b`,
			Category:    "shell",
			Severity:    "high",
			Blocking:    true,
		},

		// Bulk-destructive SQL
		{
			ID:          "sql-drop",
			Description: "SQL DROP statement",
			Pattern:     `(?i)\bDROP\s+(TABLE|DATABASE|SCHEMA|INDEX)\b`,
			Category:    "sql",
			Severity:    "high",
			Blocking:    true,
		},
		{
			ID:          "sql-truncate",
			Description: "SQL TRUNCATE statement",
			Pattern:     `(?i)\bTRUNCATE\s+TABLE\b`,
			Category:    "sql",
			Severity:    "high",
			Blocking:    true,
		},
		{
			ID:          "sql-delete-all",
			Description: "SQL DELETE without WHERE clause",
			Pattern:     `(?i)\bDELETE\s+FROM\s+[a-zA-Z_][a-zA-Z0-9_.]*\s*(;|$)`,
			Category:    "sql",
			Severity:    "medium",
			Blocking:    true,
		},
	}
}
