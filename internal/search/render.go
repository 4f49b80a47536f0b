package search

// Per-engine caps on how many hits a rendered block shows.
const (
	FaceResultCap     = 3
	StandardResultCap = 5
)

// ItemView is one rendered hit: display label plus link target.
type ItemView struct {
	Label string
	URL   string
}

// EngineView is one engine's rendered block: either an inline error or
// a capped item list.
type EngineView struct {
	Name  string
	Error string
	Items []ItemView
}

// FaceGroupView is one detected face's rendered group.
type FaceGroupView struct {
	Number  int
	Engines []EngineView
}

// VideoView is the rendered video-context block.
type VideoView struct {
	Title   string
	Source  string
	URL     string
	Matches []VideoMatch
}

// ViewModel is the deterministic rendering of a response. Exactly one
// section matches Kind; an error view carries nothing else.
type ViewModel struct {
	Kind  ResponseKind
	Error string

	Items      []ItemView // text results, uncapped
	FaceGroups []FaceGroupView
	Engines    []EngineView // standard image results, capped per engine
	Video      *VideoView
}

// Render folds a response into a view model. Pure: no network, no
// clock, no mutation of the input; the same response always yields the
// same view.
func Render(resp Response) ViewModel {
	if resp.Kind == ResponseError || resp.Error != "" {
		msg := resp.Error
		if msg == "" {
			msg = transportFailureMessage
		}
		return ViewModel{Kind: ResponseError, Error: msg}
	}

	vm := ViewModel{Kind: resp.Kind}
	switch resp.Kind {
	case ResponseText:
		for _, item := range resp.Results {
			vm.Items = append(vm.Items, ItemView{Label: item.Label(), URL: item.URL})
		}

	case ResponseImage:
		for i, group := range resp.Faces {
			vm.FaceGroups = append(vm.FaceGroups, FaceGroupView{
				Number:  i + 1,
				Engines: renderEngines(group.Results, FaceResultCap),
			})
		}
		vm.Engines = renderEngines(resp.Standard, StandardResultCap)

	case ResponseVideo:
		if resp.Video != nil {
			vm.Video = &VideoView{
				Title:   resp.Video.Title,
				Source:  resp.Video.Source,
				URL:     resp.Video.URL,
				Matches: append([]VideoMatch(nil), resp.Video.Matches...),
			}
		}
	}
	return vm
}

// renderEngines renders every engine block in mapping order, showing an
// inline error or at most limit items.
func renderEngines(set EngineSet, limit int) []EngineView {
	if set.Len() == 0 {
		return nil
	}
	views := make([]EngineView, 0, set.Len())
	for _, entry := range set.Entries() {
		view := EngineView{Name: entry.Name}
		if entry.Result.Failed() {
			view.Error = entry.Result.Err
		} else {
			items := entry.Result.Items
			if len(items) > limit {
				items = items[:limit]
			}
			for _, item := range items {
				view.Items = append(view.Items, ItemView{Label: item.Label(), URL: item.URL})
			}
		}
		views = append(views, view)
	}
	return views
}
