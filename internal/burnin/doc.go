// Package burnin implements the final pipeline stage: re-encoding the source
// video with the generated subtitles rendered into the picture.
package burnin
