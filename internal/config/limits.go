package config

const (
	// MaxProjectNameLength is the maximum length for project names.
	// Also used as the archive filename stem on export.
	MaxProjectNameLength = 255

	// MaxDescriptionLength is the maximum length for project descriptions.
	MaxDescriptionLength = 2000

	// MaxFilenameLength is the maximum length of a single project filename.
	// Files live in a flat namespace, so this is the whole path.
	MaxFilenameLength = 255

	// MaxFilesPerProject bounds the number of entries in a project's file map.
	MaxFilesPerProject = 200

	// MaxMessageContentLength bounds a single chat message body.
	MaxMessageContentLength = 100_000

	// MaxConversationMessages bounds the history accepted by /api/ai/chat.
	MaxConversationMessages = 500

	// ContextFileSnippetLength is how much of each file is sent to a
	// delegated provider as project context.
	ContextFileSnippetLength = 500

	// DefaultImportMaxBytes is the default upload limit for zip imports (5MB).
	DefaultImportMaxBytes = 5 << 20

	// MaxImportEntryBytes skips individual archive entries larger than 1MB.
	MaxImportEntryBytes = 1 << 20
)
