// ABOUTME: Scripted in-memory gateway used by the controller tests
// ABOUTME: Records calls and can block or fail individual requests

package chat

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/2389/tertulia/internal/api"
)

type fakeGateway struct {
	mu sync.Mutex

	user     *api.User
	meErr    error
	channels []api.Channel
	// joinable channels become visible after JoinChannel.
	joinable map[api.ID]api.Channel
	threads  map[api.ID][]api.Thread

	channelsErr error
	threadsErr  map[api.ID]error
	threadGate  map[api.ID]chan struct{}
	mutationErr error

	botReply  string
	botErr    error
	botGate   chan struct{}
	botAsked  []api.BotEndpoint
	botTexts  []string
	nextID    int
	calls     map[string]int
	threadFor map[api.ID]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		user: &api.User{ID: "u1", Username: "ana", FullName: "Ana Pérez"},
		channels: []api.Channel{
			{ID: "c1", Name: "Anuncios Generales", ChannelType: api.ChannelPublic},
			{ID: "c2", Name: "Proyectos de Taller", ChannelType: api.ChannelPrivate},
		},
		joinable: map[api.ID]api.Channel{
			"c3": {ID: "c3", Name: "Deportes", ChannelType: api.ChannelPublic},
		},
		threads: map[api.ID][]api.Thread{
			"c1": {
				{ID: "t1", ChannelID: "c1", Title: "Próximas Pruebas", Status: api.ThreadOpen},
				{ID: "t2", ChannelID: "c1", Title: "Eventos de la Carrera", Status: api.ThreadOpen},
			},
			"c2": {
				{ID: "t3", ChannelID: "c2", Title: "Ayuda con el Proyecto 1", Status: api.ThreadClosed},
			},
		},
		threadsErr: make(map[api.ID]error),
		threadGate: make(map[api.ID]chan struct{}),
		botReply:   "A pointer holds the address of a value.",
		calls:      make(map[string]int),
		threadFor:  make(map[api.ID]int),
	}
}

func (f *fakeGateway) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeGateway) threadFetches(channelID api.ID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.threadFor[channelID]
}

func (f *fakeGateway) Me(ctx context.Context) (*api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Me"]++
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := *f.user
	return &u, nil
}

func (f *fakeGateway) UpdateMe(ctx context.Context, in api.UpdateUserInput) (*api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateMe"]++
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	f.user.FullName = in.FullName
	u := *f.user
	return &u, nil
}

func (f *fakeGateway) ListChannelsForUser(ctx context.Context, userID api.ID) ([]api.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListChannelsForUser"]++
	if f.channelsErr != nil {
		return nil, f.channelsErr
	}
	return slices.Clone(f.channels), nil
}

func (f *fakeGateway) GetChannel(ctx context.Context, channelID api.ID) (*api.ChannelDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetChannel"]++
	for _, ch := range f.channels {
		if ch.ID == channelID {
			return &api.ChannelDetail{Channel: ch, Users: []api.ID{f.user.ID}}, nil
		}
	}
	return nil, &api.Error{StatusCode: 404, Message: "Canal no encontrado"}
}

func (f *fakeGateway) CreateChannel(ctx context.Context, in api.CreateChannelInput) (*api.ChannelDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateChannel"]++
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	f.nextID++
	ch := api.Channel{
		ID:          api.ID(fmt.Sprintf("new-%d", f.nextID)),
		Name:        in.Name,
		OwnerID:     in.OwnerID,
		ChannelType: in.ChannelType,
	}
	f.channels = append(f.channels, ch)
	return &api.ChannelDetail{Channel: ch, Users: []api.ID{in.OwnerID}}, nil
}

func (f *fakeGateway) JoinChannel(ctx context.Context, in api.JoinChannelInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["JoinChannel"]++
	ch, ok := f.joinable[in.ChannelID]
	if !ok {
		return &api.Error{StatusCode: 404, Message: "Canal no encontrado"}
	}
	delete(f.joinable, in.ChannelID)
	f.channels = append(f.channels, ch)
	return nil
}

func (f *fakeGateway) LeaveChannel(ctx context.Context, channelID, userID api.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["LeaveChannel"]++
	if f.mutationErr != nil {
		return f.mutationErr
	}
	f.channels = slices.DeleteFunc(f.channels, func(ch api.Channel) bool {
		return ch.ID == channelID
	})
	return nil
}

func (f *fakeGateway) ListChannelMembers(ctx context.Context, channelID api.ID) ([]api.ChannelMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListChannelMembers"]++
	return []api.ChannelMember{{ID: f.user.ID}, {ID: "u2"}}, nil
}

func (f *fakeGateway) CreateThread(ctx context.Context, in api.CreateThreadInput) (*api.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateThread"]++
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	f.nextID++
	t := api.Thread{
		ID:        api.ID(fmt.Sprintf("nt-%d", f.nextID)),
		ChannelID: in.ChannelID,
		Title:     in.Title,
		CreatedBy: in.CreatedBy,
		Status:    api.ThreadOpen,
	}
	f.threads[in.ChannelID] = append(f.threads[in.ChannelID], t)
	return &t, nil
}

func (f *fakeGateway) ListThreads(ctx context.Context, channelID api.ID) ([]api.Thread, error) {
	f.mu.Lock()
	f.calls["ListThreads"]++
	f.threadFor[channelID]++
	gate := f.threadGate[channelID]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.threadsErr[channelID]; err != nil {
		return nil, err
	}
	return slices.Clone(f.threads[channelID]), nil
}

func (f *fakeGateway) AskBot(ctx context.Context, endpoint api.BotEndpoint, text string) (string, error) {
	f.mu.Lock()
	f.calls["AskBot"]++
	f.botAsked = append(f.botAsked, endpoint)
	f.botTexts = append(f.botTexts, text)
	gate := f.botGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.botErr != nil {
		return "", f.botErr
	}
	return f.botReply, nil
}
