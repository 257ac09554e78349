package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-menu-service/internal/category/dto"
	catrepo "github.com/fekuna/omnipos-menu-service/internal/category/repository"
	catusecase "github.com/fekuna/omnipos-menu-service/internal/category/usecase"
	"github.com/fekuna/omnipos-menu-service/internal/dish/handler"
	"github.com/fekuna/omnipos-menu-service/internal/dish/repository"
	"github.com/fekuna/omnipos-menu-service/internal/dish/usecase"
	"github.com/fekuna/omnipos-menu-service/internal/event"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/pkg/database"
	"github.com/fekuna/omnipos-menu-service/pkg/database/databasetest"
	"github.com/fekuna/omnipos-menu-service/pkg/i18n"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/fekuna/omnipos-menu-service/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Total   *int            `json:"total"`
	Error   string          `json:"error"`
}

type testServer struct {
	router http.Handler
	soups  *model.Category
	bar    *model.Category
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	require.NoError(t, i18n.Init("ru"))

	db := databasetest.New(t)
	log := logger.NewNop()
	tx := database.NewTransactor(db)
	events := event.NewDispatcher(nil, nil, log)
	cats := catrepo.NewSQLRepository(db)

	categories := catusecase.NewCategoryUseCase(cats, tx, nil, nil, events, log)
	dishes := usecase.NewDishUseCase(repository.NewSQLRepository(db), cats, tx, nil, nil, nil, events, log)

	soups, err := categories.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Soups"})
	require.NoError(t, err)
	bar, err := categories.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Bar"})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.Language)
	handler.NewDishHandler(dishes, log).Mount(r)

	return &testServer{router: r, soups: soups, bar: bar}
}

func (s *testServer) do(t *testing.T, method, path, body, lang string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *testServer) create(t *testing.T, name string, cat *model.Category) model.Dish {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/dishes", `{"category_id":"`+cat.ID+`","name":"`+name+`","price":9.5,"quantity":1}`, "en")
	require.Equal(t, http.StatusCreated, code, env.Error)

	var d model.Dish
	require.NoError(t, json.Unmarshal(env.Data, &d))
	return d
}

func (s *testServer) names(t *testing.T, cat *model.Category) []string {
	t.Helper()
	code, env := s.do(t, http.MethodGet, "/categories/"+cat.ID+"/dishes", "", "")
	require.Equal(t, http.StatusOK, code)

	var dishes []model.Dish
	require.NoError(t, json.Unmarshal(env.Data, &dishes))
	out := make([]string, len(dishes))
	for i, d := range dishes {
		out[i] = d.Name
	}
	return out
}

func TestDishHandler(t *testing.T) {
	t.Run("Creates a dish with a localized message", func(t *testing.T) {
		s := newTestServer(t)
		code, env := s.do(t, http.MethodPost, "/dishes", `{"category_id":"`+s.soups.ID+`","name":"Borscht","price":12}`, "")

		assert.Equal(t, http.StatusCreated, code)
		assert.Equal(t, "Блюдо Borscht успешно добавлено в категорию Soups", env.Message)
	})

	t.Run("Validates the body", func(t *testing.T) {
		s := newTestServer(t)

		code, _ := s.do(t, http.MethodPost, "/dishes", `{"name":"Borscht"}`, "en")
		assert.Equal(t, http.StatusBadRequest, code)

		code, _ = s.do(t, http.MethodPost, "/dishes", `{"category_id":"`+s.soups.ID+`","name":"Borscht","price":-1}`, "en")
		assert.Equal(t, http.StatusBadRequest, code)

		code, env := s.do(t, http.MethodPost, "/dishes", `{"category_id":"missing","name":"Borscht"}`, "en")
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "Not found", env.Error)
	})

	t.Run("Reorders, moves and removes dishes", func(t *testing.T) {
		s := newTestServer(t)
		s.create(t, "Borscht", s.soups)
		shchi := s.create(t, "Shchi", s.soups)
		ukha := s.create(t, "Ukha", s.soups)

		code, _ := s.do(t, http.MethodPost, "/dishes/"+ukha.ID+"/number", `{"number":1}`, "en")
		assert.Equal(t, http.StatusCreated, code)
		assert.Equal(t, []string{"Ukha", "Borscht", "Shchi"}, s.names(t, s.soups))

		code, env := s.do(t, http.MethodPost, "/dishes/"+ukha.ID+"/number", `{"number":4}`, "en")
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, "Position is out of range", env.Error)

		code, _ = s.do(t, http.MethodPut, "/dishes/"+shchi.ID, `{"category_id":"`+s.bar.ID+`","name":"Shchi","price":9.5}`, "en")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, []string{"Ukha", "Borscht"}, s.names(t, s.soups))
		assert.Equal(t, []string{"Shchi"}, s.names(t, s.bar))

		code, env = s.do(t, http.MethodDelete, "/dishes/"+ukha.ID, "", "en")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Dish removed", env.Message)
		assert.Equal(t, []string{"Borscht"}, s.names(t, s.soups))

		code, _ = s.do(t, http.MethodGet, "/dishes/"+ukha.ID, "", "en")
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("Toggles visibility", func(t *testing.T) {
		s := newTestServer(t)
		d := s.create(t, "Borscht", s.soups)

		code, env := s.do(t, http.MethodPost, "/dishes/"+d.ID+"/toggle-hide", "", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Блюдо скрыто из меню Telegram-бота!", env.Message)
		assert.JSONEq(t, `{"is_hidden":true}`, string(env.Data))

		_, env = s.do(t, http.MethodPost, "/dishes/"+d.ID+"/toggle-hide", "", "")
		assert.Equal(t, "Блюдо теперь будет показано в меню Telegram-бота", env.Message)
	})

	t.Run("Searches dishes", func(t *testing.T) {
		s := newTestServer(t)
		s.create(t, "Borscht", s.soups)
		s.create(t, "Mojito", s.bar)

		code, env := s.do(t, http.MethodGet, "/dishes/search?q=borsch", "", "en")
		assert.Equal(t, http.StatusOK, code)
		require.NotNil(t, env.Total)
		assert.Equal(t, 1, *env.Total)

		_, env = s.do(t, http.MethodGet, "/dishes/search?category_id="+s.bar.ID, "", "en")
		assert.Equal(t, 1, *env.Total)
		assert.Contains(t, string(env.Data), "Mojito")
	})

	t.Run("Returns a dish with its category", func(t *testing.T) {
		s := newTestServer(t)
		d := s.create(t, "Borscht", s.soups)

		code, env := s.do(t, http.MethodGet, "/dishes/"+d.ID, "", "en")
		assert.Equal(t, http.StatusOK, code)

		var got model.Dish
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.NotNil(t, got.Category)
		assert.Equal(t, "Soups", got.Category.Name)
	})

	t.Run("Treats malformed ids as missing", func(t *testing.T) {
		s := newTestServer(t)
		s.create(t, "Borscht", s.soups)

		for _, path := range []string{"/dishes/42", "/categories/42/dishes"} {
			code, env := s.do(t, http.MethodGet, path, "", "en")
			assert.Equal(t, http.StatusNotFound, code, path)
			assert.Equal(t, "Not found", env.Error, path)
		}

		code, _ := s.do(t, http.MethodPost, "/dishes/42/toggle-hide", "", "en")
		assert.Equal(t, http.StatusNotFound, code)

		code, _ = s.do(t, http.MethodPost, "/dishes", `{"category_id":"42","name":"Ghost"}`, "en")
		assert.Equal(t, http.StatusNotFound, code)

		code, env := s.do(t, http.MethodGet, "/dishes/search?category_id=42", "", "en")
		assert.Equal(t, http.StatusOK, code)
		require.NotNil(t, env.Total)
		assert.Equal(t, 0, *env.Total)
	})
}
