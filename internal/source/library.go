package source

import (
	"context"
	"fmt"
	"hash/fnv"
	"io/fs"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"

	"github.com/camilorojas87/mixtaped/internal/constants"
	"github.com/camilorojas87/mixtaped/internal/domain"
	"github.com/camilorojas87/mixtaped/internal/logger"
)

// LibraryProvider serves random tracks from a local directory of tagged
// .mp3/.flac files, letting the player run without a remote song service.
type LibraryProvider struct {
	dir string
	log *logger.Logger

	mu      sync.Mutex
	rng     *rand.Rand
	byGenre map[domain.Genre][]domain.Track
}

func NewLibraryProvider(dir string, rng *rand.Rand, log *logger.Logger) (*LibraryProvider, error) {
	if log == nil {
		log = logger.Default()
	}
	p := &LibraryProvider{
		dir:     dir,
		log:     log.WithComponent("library"),
		rng:     rng,
		byGenre: make(map[domain.Genre][]domain.Track),
	}
	if err := p.scan(); err != nil {
		return nil, err
	}
	return p, nil
}

// scan walks the library once and indexes every readable, genre-tagged file.
// Files with unreadable tags or unknown genres are skipped, not fatal.
func (p *LibraryProvider) scan() error {
	count := 0
	err := filepath.WalkDir(p.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		var track *domain.Track
		var readErr error
		switch strings.ToLower(filepath.Ext(path)) {
		case constants.ExtMP3:
			track, readErr = readMP3(path)
		case constants.ExtFLAC:
			track, readErr = readFLAC(path)
		default:
			return nil
		}
		if readErr != nil {
			p.log.Warn("skipping unreadable file", "path", path, "error", readErr)
			return nil
		}

		p.byGenre[track.Genre] = append(p.byGenre[track.Genre], *track)
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan library %s: %w", p.dir, err)
	}

	p.log.Info("library scanned", "dir", p.dir, "tracks", count, "genres", len(p.byGenre))
	return nil
}

func (p *LibraryProvider) FetchOne(ctx context.Context, genre domain.Genre) (*domain.Track, error) {
	tracks, err := p.FetchMany(ctx, genre, 1)
	if err != nil {
		return nil, err
	}
	return &tracks[0], nil
}

func (p *LibraryProvider) FetchMany(_ context.Context, genre domain.Genre, count int) ([]domain.Track, error) {
	if count <= 0 {
		count = constants.DefaultBatchSize
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	pool := p.byGenre[genre]
	if genre == "" {
		for _, tracks := range p.byGenre {
			pool = append(pool, tracks...)
		}
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("library has no tracks for genre %q", genre)
	}

	out := make([]domain.Track, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, pool[p.rng.Intn(len(pool))])
	}
	return out, nil
}

func readMP3(path string) (*domain.Track, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read id3 tag: %w", err)
	}
	defer tag.Close() //nolint:errcheck // read-only handle

	genre, err := mapGenre(tag.Genre())
	if err != nil {
		return nil, err
	}

	track := &domain.Track{
		ID:            trackID(path),
		Title:         tag.Title(),
		Artist:        tag.Artist(),
		Album:         tag.Album(),
		Genre:         genre,
		StreamLocator: path,
	}

	for _, frame := range tag.GetFrames(tag.CommonID("Attached picture")) {
		if pic, ok := frame.(id3v2.PictureFrame); ok {
			track.Thumbnail = pic.Picture
			break
		}
	}

	return track, nil
}

func readFLAC(path string) (*domain.Track, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse flac: %w", err)
	}

	track := &domain.Track{
		ID:            trackID(path),
		StreamLocator: path,
	}

	genreTag := ""
	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				continue
			}
			track.Title = firstComment(cmt, flacvorbis.FIELD_TITLE)
			track.Artist = firstComment(cmt, flacvorbis.FIELD_ARTIST)
			track.Album = firstComment(cmt, flacvorbis.FIELD_ALBUM)
			genreTag = firstComment(cmt, flacvorbis.FIELD_GENRE)
		case flac.Picture:
			if pic, err := flacpicture.ParseFromMetaDataBlock(*block); err == nil {
				track.Thumbnail = pic.ImageData
			}
		}
	}

	genre, err := mapGenre(genreTag)
	if err != nil {
		return nil, err
	}
	track.Genre = genre

	return track, nil
}

func firstComment(cmt *flacvorbis.MetaDataBlockVorbisComment, field string) string {
	values, err := cmt.Get(field)
	if err != nil || len(values) == 0 {
		return ""
	}
	return values[0]
}

// mapGenre normalizes the loose genre spellings found in file tags onto the
// closed genre set.
func mapGenre(tag string) (domain.Genre, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "jazz":
		return domain.GenreJazz, nil
	case "pop":
		return domain.GenrePop, nil
	case "rock":
		return domain.GenreRock, nil
	case "classic", "classical":
		return domain.GenreClassic, nil
	case "rnb", "r&b", "rhythm and blues":
		return domain.GenreRnB, nil
	case "hiphop", "hip-hop", "hip hop", "rap":
		return domain.GenreHiphop, nil
	default:
		return "", fmt.Errorf("unmapped genre tag: %q", tag)
	}
}

// trackID derives a stable positive id from the file path so the same file
// keeps its identity across scans.
func trackID(path string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	id := int64(h.Sum64() & 0x7FFFFFFFFFFFFFFF) //nolint:gosec // masked to 63 bits
	if id == 0 {
		id = 1 // 0 is the baseline sentinel
	}
	return id
}
