package classify

// defaultReadNames is the built-in read-only command name set. Names with
// argument-dependent risk (sed, awk, find) are listed here but only after
// their argument rules pass.
var defaultReadNames = nameSet(
	// File reading
	"cat", "less", "more", "head", "tail", "wc", "nl", "tac", "rev",
	// Search and filtering
	"grep", "egrep", "fgrep", "rg", "ripgrep", "ag", "ack",
	// Text processing
	"sort", "uniq", "cut", "paste", "join", "comm", "column",
	"tr", "expand", "unexpand", "fold", "fmt", "pr", "shuf", "tsort",
	// Comparison
	"diff", "cmp", "sdiff", "vimdiff",
	// Checksums
	"md5sum", "sha1sum", "sha256sum", "sha512sum", "cksum", "sum",
	// Binary inspection
	"od", "hexdump", "xxd", "strings", "file", "readelf", "objdump", "nm",
	// Filesystem inspection
	"ls", "dir", "vdir", "pwd", "which", "type", "whereis", "locate", "find",
	"basename", "dirname", "readlink", "realpath", "stat",
	// User and system info
	"whoami", "id", "groups", "users", "who", "w", "last", "lastlog",
	"hostname", "uname", "arch", "lsb_release", "hostnamectl",
	"date", "cal", "uptime", "df", "du", "free", "vmstat", "iostat",
	// Process monitoring
	"ps", "pgrep", "pidof", "top", "htop", "iotop", "atop",
	"lsof", "jobs", "pstree", "fuser",
	// Network monitoring
	"netstat", "ss", "ip", "ifconfig", "route", "arp",
	"ping", "traceroute", "tracepath", "mtr", "nslookup", "dig", "host", "whois",
	// Environment
	"printenv", "env", "set", "export", "alias", "history", "fc",
	// Output
	"echo", "printf", "yes", "seq", "jot",
	// Shell builtins and tests
	"test", "[", "[[", "true", "false",
	// Calculation
	"bc", "dc", "expr", "factor", "units",
	// Structured data and modern tools
	"jq", "yq", "xmlstarlet", "xmllint", "xsltproc",
	"bat", "fd", "fzf", "tree", "ncdu", "exa", "lsd",
	"tldr", "cheat",
	// Code search
	"ast-grep", "sg", "ast_grep",
	// Argument-gated (see argumentRules)
	"awk", "sed", "gawk", "mawk", "gsed",
)

// defaultWriteNames is the built-in always-write-like name set.
var defaultWriteNames = nameSet(
	// File operations
	"rm", "rmdir", "unlink", "shred",
	"mv", "rename", "cp", "install", "dd",
	"mkdir", "mkfifo", "mknod", "mktemp", "touch", "truncate",
	// Permissions and links
	"chmod", "chown", "chgrp", "umask",
	"ln", "link", "symlink",
	"setfacl", "setfattr", "chattr",
	// System management
	"useradd", "userdel", "usermod", "groupadd", "groupdel",
	"passwd", "chpasswd", "systemctl", "service",
	// Package managers
	"apt", "apt-get", "dpkg", "snap", "yum", "dnf", "rpm",
	"pip", "pip3", "npm", "yarn", "gem", "cargo",
	// Build tools
	"make", "cmake", "ninja", "meson",
	// Privilege escalation and scheduling
	"sudo", "doas", "su", "crontab", "at", "batch",
	// Process and output control
	"kill", "pkill", "killall", "tee",
)

func nameSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
