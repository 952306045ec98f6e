package constants

type ContentType string

func (t ContentType) Bytes() []byte {
	return []byte(t)
}

func (t ContentType) String() string {
	return string(t)
}

const (
	ContentTypeCbor             ContentType = "application/cbor"
	ContentTypeJson             ContentType = "application/json"
	ContentTypeOctetStream      ContentType = "application/octet-stream"
	ContentTypePdf              ContentType = "application/pdf"
	ContentTypePgpSignature     ContentType = "application/pgp-signature"
	ContentTypeProtobuf         ContentType = "application/protobuf"
	ContentTypeYaml             ContentType = "application/yaml"
	ContentTypeAudioFlac        ContentType = "audio/flac"
	ContentTypeAudioMpeg        ContentType = "audio/mpeg"
	ContentTypeAudioWav         ContentType = "audio/wav"
	ContentTypeFontOtf          ContentType = "font/otf"
	ContentTypeFontTtf          ContentType = "font/ttf"
	ContentTypeFontWoff         ContentType = "font/woff"
	ContentTypeFontWoff2        ContentType = "font/woff2"
	ContentTypeImageApng        ContentType = "image/apng"
	ContentTypeImageAvif        ContentType = "image/avif"
	ContentTypeImageGif         ContentType = "image/gif"
	ContentTypeImageJpeg        ContentType = "image/jpeg"
	ContentTypeImagePng         ContentType = "image/png"
	ContentTypeImageSvgXml      ContentType = "image/svg+xml"
	ContentTypeImageWebp        ContentType = "image/webp"
	ContentTypeModelGltfJson    ContentType = "model/gltf+json"
	ContentTypeModelGltfBinary  ContentType = "model/gltf-binary"
	ContentTypeModelStl         ContentType = "model/stl"
	ContentTypeTextCss          ContentType = "text/css"
	ContentTypeTextHtmlUtf8     ContentType = "text/html;charset=utf-8"
	ContentTypeTextJs           ContentType = "text/javascript"
	ContentTypeTextMarkdownUtf8 ContentType = "text/markdown;charset=utf-8"
	ContentTypeTextPlain        ContentType = "text/plain"
	ContentTypeTextPlainUtf8    ContentType = "text/plain;charset=utf-8"
	ContentTypeTextXPython      ContentType = "text/x-python"
	ContentTypeVideoMp4         ContentType = "video/mp4"
	ContentTypeVideoWebm        ContentType = "video/webm"
)

type Extension string

const ExtensionMp4 Extension = "mp4"

// Medias maps file extensions to the content type recorded in the envelope.
var Medias = map[Extension]ContentType{
	"cbor":  ContentTypeCbor,
	"json":  ContentTypeJson,
	"bin":   ContentTypeOctetStream,
	"pdf":   ContentTypePdf,
	"asc":   ContentTypePgpSignature,
	"binpb": ContentTypeProtobuf,
	"yaml":  ContentTypeYaml,
	"yml":   ContentTypeYaml,
	"flac":  ContentTypeAudioFlac,
	"mp3":   ContentTypeAudioMpeg,
	"wav":   ContentTypeAudioWav,
	"otf":   ContentTypeFontOtf,
	"ttf":   ContentTypeFontTtf,
	"woff":  ContentTypeFontWoff,
	"woff2": ContentTypeFontWoff2,
	"apng":  ContentTypeImageApng,
	"avif":  ContentTypeImageAvif,
	"gif":   ContentTypeImageGif,
	"jpg":   ContentTypeImageJpeg,
	"jpeg":  ContentTypeImageJpeg,
	"png":   ContentTypeImagePng,
	"svg":   ContentTypeImageSvgXml,
	"webp":  ContentTypeImageWebp,
	"gltf":  ContentTypeModelGltfJson,
	"glb":   ContentTypeModelGltfBinary,
	"stl":   ContentTypeModelStl,
	"css":   ContentTypeTextCss,
	"html":  ContentTypeTextHtmlUtf8,
	"js":    ContentTypeTextJs,
	"md":    ContentTypeTextMarkdownUtf8,
	"txt":   ContentTypeTextPlainUtf8,
	"py":    ContentTypeTextXPython,
	"mp4":   ContentTypeVideoMp4,
	"webm":  ContentTypeVideoWebm,
}
