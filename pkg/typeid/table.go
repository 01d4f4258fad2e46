package typeid

// Uniform type identifiers used by the host to pick icons and handlers.
const (
	Folder     = "public.folder"
	Data       = "public.data"
	Text       = "public.plain-text"
	Image      = "public.image"
	Audio      = "public.audio"
	Movie      = "public.movie"
	Archive    = "public.archive"
	PDF        = "com.adobe.pdf"
	SourceCode = "public.source-code"
)

// extensions maps lowercase filename extensions, without the dot, to UTIs.
var extensions = map[string]string{
	// Text
	"txt":      Text,
	"text":     Text,
	"md":       "net.daringfireball.markdown",
	"markdown": "net.daringfireball.markdown",
	"csv":      "public.comma-separated-values-text",
	"tsv":      "public.tab-separated-values-text",
	"rtf":      "public.rtf",
	"log":      "com.apple.log",
	"html":     "public.html",
	"htm":      "public.html",
	"xml":      "public.xml",
	"json":     "public.json",
	"yaml":     "public.yaml",
	"yml":      "public.yaml",

	// Source code
	"go":    SourceCode,
	"c":     "public.c-source",
	"h":     "public.c-header",
	"cpp":   "public.c-plus-plus-source",
	"swift": "public.swift-source",
	"m":     "public.objective-c-source",
	"py":    "public.python-script",
	"js":    "com.netscape.javascript-source",
	"sh":    "public.shell-script",
	"rb":    "public.ruby-script",
	"java":  "com.sun.java-source",

	// Images
	"jpg":  "public.jpeg",
	"jpeg": "public.jpeg",
	"png":  "public.png",
	"gif":  "com.compuserve.gif",
	"bmp":  "com.microsoft.bmp",
	"tif":  "public.tiff",
	"tiff": "public.tiff",
	"heic": "public.heic",
	"webp": "org.webmproject.webp",
	"svg":  "public.svg-image",
	"ico":  "com.microsoft.ico",

	// Audio
	"mp3":  "public.mp3",
	"m4a":  "com.apple.m4a-audio",
	"wav":  "com.microsoft.waveform-audio",
	"aiff": "public.aiff-audio",
	"flac": "org.xiph.flac",
	"ogg":  "org.xiph.ogg-audio",

	// Video
	"mp4":  "public.mpeg-4",
	"m4v":  "com.apple.m4v-video",
	"mov":  "com.apple.quicktime-movie",
	"avi":  "public.avi",
	"mkv":  "org.matroska.mkv",
	"webm": "org.webmproject.webm",

	// Documents
	"pdf":     PDF,
	"doc":     "com.microsoft.word.doc",
	"docx":    "org.openxmlformats.wordprocessingml.document",
	"xls":     "com.microsoft.excel.xls",
	"xlsx":    "org.openxmlformats.spreadsheetml.sheet",
	"ppt":     "com.microsoft.powerpoint.ppt",
	"pptx":    "org.openxmlformats.presentationml.presentation",
	"odt":     "org.oasis-open.opendocument.text",
	"ods":     "org.oasis-open.opendocument.spreadsheet",
	"odp":     "org.oasis-open.opendocument.presentation",
	"pages":   "com.apple.iwork.pages.sffpages",
	"numbers": "com.apple.iwork.numbers.sffnumbers",
	"key":     "com.apple.iwork.keynote.sffkey",
	"epub":    "org.idpf.epub-container",

	// Archives
	"zip": "public.zip-archive",
	"gz":  "org.gnu.gnu-zip-archive",
	"tgz": "org.gnu.gnu-zip-tar-archive",
	"tar": "public.tar-archive",
	"bz2": "public.bzip2-archive",
	"7z":  "org.7-zip.7-zip-archive",
	"rar": "com.rarlab.rar-archive",
}

// mimeTypes maps sniffed MIME types to UTIs. Lookup walks the detected
// type's parents, so "text/plain" catches every textual format mimetype
// does not name more precisely.
var mimeTypes = map[string]string{
	"text/plain":       Text,
	"text/html":        "public.html",
	"text/xml":         "public.xml",
	"application/json": "public.json",
	"text/csv":         "public.comma-separated-values-text",
	"text/rtf":         "public.rtf",

	"image/jpeg":    "public.jpeg",
	"image/png":     "public.png",
	"image/gif":     "com.compuserve.gif",
	"image/bmp":     "com.microsoft.bmp",
	"image/tiff":    "public.tiff",
	"image/heic":    "public.heic",
	"image/webp":    "org.webmproject.webp",
	"image/svg+xml": "public.svg-image",

	"audio/mpeg": "public.mp3",
	"audio/wav":  "com.microsoft.waveform-audio",
	"audio/flac": "org.xiph.flac",
	"audio/ogg":  "org.xiph.ogg-audio",

	"video/mp4":        "public.mpeg-4",
	"video/quicktime":  "com.apple.quicktime-movie",
	"video/webm":       "org.webmproject.webm",
	"video/x-matroska": "org.matroska.mkv",

	"application/pdf":      PDF,
	"application/epub+zip": "org.idpf.epub-container",

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   "org.openxmlformats.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "org.openxmlformats.spreadsheetml.sheet",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "org.openxmlformats.presentationml.presentation",

	"application/zip":              "public.zip-archive",
	"application/gzip":             "org.gnu.gnu-zip-archive",
	"application/x-tar":            "public.tar-archive",
	"application/x-bzip2":          "public.bzip2-archive",
	"application/x-7z-compressed":  "org.7-zip.7-zip-archive",
	"application/x-rar-compressed": "com.rarlab.rar-archive",
}
