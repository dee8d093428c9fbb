package internal

// Error categories group platform codes by remediation: what the caller
// should do about the failure, not where it came from.
const (
	CategoryAuth       = "auth"
	CategoryThrottle   = "throttle"
	CategoryPermission = "permission"
	CategoryMedia      = "media"
	CategoryPolicy     = "policy"
	CategoryRequest    = "request"
	CategoryTransient  = "transient"
	CategoryUnknown    = "unknown"
)

// CodeInfo is the wrapper-side description of a platform error code.
type CodeInfo struct {
	Message  string
	Category string
}

// codeTable maps Graph API error codes to a stable message and category.
// Codes missing from the table keep the platform's own message and report
// CategoryUnknown.
var codeTable = map[int]CodeInfo{
	1:   {"An unknown error occurred, the request may have timed out", CategoryTransient},
	2:   {"The service is temporarily unavailable", CategoryTransient},
	4:   {"Application request limit reached", CategoryThrottle},
	10:  {"The application does not have permission for this action", CategoryPermission},
	17:  {"User request limit reached", CategoryThrottle},
	100: {"Invalid parameter", CategoryRequest},
	102: {"Session key invalid or no longer valid", CategoryAuth},
	190: {"Access token has expired or been invalidated", CategoryAuth},
	200: {"Permission error: the token is missing a required scope", CategoryPermission},
	294: {"Managing advertisements requires an access token with the extended permission", CategoryPermission},
	341: {"Application limit reached for this action", CategoryThrottle},
	368: {"The action attempted has been deemed abusive or is otherwise disallowed", CategoryPolicy},
	506: {"Duplicate status message", CategoryPolicy},

	9004: {"The media could not be fetched from the given URI", CategoryMedia},
	9007: {"The media container is not ready for publishing", CategoryMedia},

	2207001: {"Instagram server error while processing the media", CategoryTransient},
	2207003: {"Downloading the media took too long", CategoryMedia},
	2207020: {"The media expired before publishing, create it again", CategoryMedia},
	2207026: {"Unsupported video format, review the video specifications", CategoryMedia},
	2207032: {"Failed to create the media container", CategoryTransient},
	2207042: {"Publishing limit reached for this account", CategoryThrottle},
	2207051: {"The publish action is suspected to be spam", CategoryPolicy},
}

// LookupCode returns the wrapper's description of a platform error code.
func LookupCode(code int) (CodeInfo, bool) {
	info, ok := codeTable[code]
	return info, ok
}
