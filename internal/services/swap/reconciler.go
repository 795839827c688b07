package swap

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/store"
)

// Reconciler сводит входящие и исходящие заявки пользователя в три списка
type Reconciler struct {
	store    store.Store
	profiles ProfileDirectory
	log      *logrus.Entry
}

// NewReconciler создает новый экземпляр Reconciler
func NewReconciler(st store.Store, profiles ProfileDirectory, log *logrus.Entry) *Reconciler {
	return &Reconciler{store: st, profiles: profiles, log: log}
}

func receivedQuery(userID string) store.Query {
	return store.From(models.CollectionSwapRequests).
		Filter("toUserId", store.OpEqual, userID).
		Order("createdAt", true)
}

func sentQuery(userID string) store.Query {
	return store.From(models.CollectionSwapRequests).
		Filter("fromUserId", store.OpEqual, userID).
		Order("createdAt", true)
}

// viewSubscription - состояние одной подписки: последние снимки обоих запросов
type viewSubscription struct {
	userID         string
	receivedRaw    []models.SwapRequest
	sentRaw        []models.SwapRequest
	receivedLoaded bool
	sentLoaded     bool
}

func (v *viewSubscription) ready() bool {
	return v.receivedLoaded && v.sentLoaded
}

// Subscribe открывает два живых запроса и вызывает onUpdate со сводным представлением.
// Первый вызов происходит только после того, как оба запроса вернули результат.
// Функцию отписки нужно вызвать ровно один раз и не из onUpdate.
func (r *Reconciler) Subscribe(ctx context.Context, userID string, onUpdate func(models.RequestsView)) (func(), error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	received, err := r.store.Subscribe(ctx, receivedQuery(userID))
	if err != nil {
		return nil, fmt.Errorf("ошибка подписки на входящие заявки: %w", err)
	}
	sent, err := r.store.Subscribe(ctx, sentQuery(userID))
	if err != nil {
		received.Cancel()
		return nil, fmt.Errorf("ошибка подписки на исходящие заявки: %w", err)
	}

	sub := &viewSubscription{userID: userID}
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.run(ctx, sub, received, sent, onUpdate)
	}()

	return sync.OnceFunc(func() {
		received.Cancel()
		sent.Cancel()
		<-done
	}), nil
}

func (r *Reconciler) run(ctx context.Context, sub *viewSubscription, received, sent *store.Stream, onUpdate func(models.RequestsView)) {
	receivedC, sentC := received.C, sent.C

	for receivedC != nil || sentC != nil {
		select {
		case snap, ok := <-receivedC:
			if !ok {
				receivedC = nil
				continue
			}
			if snap.Err != nil {
				r.logSnapshotError(sub.userID, "received", snap.Err)
				continue
			}
			sub.receivedRaw = requestsFromDocuments(snap.Docs)
			sub.receivedLoaded = true

		case snap, ok := <-sentC:
			if !ok {
				sentC = nil
				continue
			}
			if snap.Err != nil {
				r.logSnapshotError(sub.userID, "sent", snap.Err)
				continue
			}
			sub.sentRaw = requestsFromDocuments(snap.Docs)
			sub.sentLoaded = true
		}

		if sub.ready() {
			onUpdate(r.build(ctx, sub.userID, sub.receivedRaw, sub.sentRaw))
		}
	}
}

func (r *Reconciler) logSnapshotError(userID, query string, err error) {
	r.log.WithError(err).WithFields(logrus.Fields{
		"user_id": userID,
		"query":   query,
	}).Warn("⚠️ Ошибка живого запроса заявок")
}

// Snapshot вычисляет сводное представление разовым запросом
func (r *Reconciler) Snapshot(ctx context.Context, userID string) (models.RequestsView, error) {
	if userID == "" {
		return models.RequestsView{}, ErrMissingUserID
	}

	receivedDocs, err := r.store.Query(ctx, receivedQuery(userID))
	if err != nil {
		return models.RequestsView{}, fmt.Errorf("ошибка получения входящих заявок: %w", err)
	}
	sentDocs, err := r.store.Query(ctx, sentQuery(userID))
	if err != nil {
		return models.RequestsView{}, fmt.Errorf("ошибка получения исходящих заявок: %w", err)
	}

	return r.build(ctx, userID, requestsFromDocuments(receivedDocs), requestsFromDocuments(sentDocs)), nil
}

// build объединяет снимки, присоединяет профили и раскладывает по спискам
func (r *Reconciler) build(ctx context.Context, userID string, received, sent []models.SwapRequest) models.RequestsView {
	all := unionRequests(received, sent)

	ids := make([]string, 0, len(all)*2)
	for _, req := range all {
		ids = append(ids, req.FromUserID, req.ToUserID)
	}
	profiles := r.profiles.Resolve(ctx, ids)

	joined := make([]models.JoinedSwapRequest, 0, len(all))
	for _, req := range all {
		j := models.JoinedSwapRequest{SwapRequest: req}
		if p, ok := profiles[req.FromUserID]; ok {
			j.FromUser = &p
		}
		if p, ok := profiles[req.ToUserID]; ok {
			j.ToUser = &p
		}
		joined = append(joined, j)
	}

	return Bucket(userID, joined)
}

// Bucket раскладывает заявки пользователя по спискам received, sent и completed.
// Одна заявка может попасть в несколько списков или ни в один.
func Bucket(userID string, joined []models.JoinedSwapRequest) models.RequestsView {
	view := models.RequestsView{
		Received:  []models.JoinedSwapRequest{},
		Sent:      []models.JoinedSwapRequest{},
		Completed: []models.CompletedSwap{},
	}

	for _, j := range joined {
		if j.ToUserID == userID && j.Status == models.SwapStatusPending {
			view.Received = append(view.Received, j)
		}
		if j.FromUserID == userID && (j.Status == models.SwapStatusPending || j.Status == models.SwapStatusAccepted) {
			view.Sent = append(view.Sent, j)
		}
		if j.Involves(userID) && j.Status == models.SwapStatusCompleted {
			view.Completed = append(view.Completed, completedSwap(userID, j))
		}
	}
	return view
}

func completedSwap(userID string, j models.JoinedSwapRequest) models.CompletedSwap {
	partner := j.FromUser
	if j.FromUserID == userID {
		partner = j.ToUser
	}

	offered := "N/A"
	if partner != nil && len(partner.SkillsOffered) > 0 {
		offered = partner.SkillsOffered[0]
	}

	return models.CompletedSwap{
		JoinedSwapRequest: j,
		Partner:           partner,
		CompletedDate:     j.UpdatedAt,
		SkillExchanged:    j.SkillWanted + " ↔ " + offered,
	}
}

// unionRequests объединяет снимки без повторов, новые заявки первыми
func unionRequests(received, sent []models.SwapRequest) []models.SwapRequest {
	seen := make(map[string]bool, len(received)+len(sent))
	all := make([]models.SwapRequest, 0, len(received)+len(sent))
	for _, list := range [][]models.SwapRequest{received, sent} {
		for _, req := range list {
			if seen[req.ID] {
				continue
			}
			seen[req.ID] = true
			all = append(all, req)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all
}

func requestsFromDocuments(docs []store.Document) []models.SwapRequest {
	requests := make([]models.SwapRequest, 0, len(docs))
	for _, doc := range docs {
		requests = append(requests, models.SwapRequestFromDocument(doc))
	}
	return requests
}
