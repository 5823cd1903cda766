package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/angeloszaimis/devboard/config"
	"github.com/angeloszaimis/devboard/internal/devs"
	"github.com/angeloszaimis/devboard/internal/handler"
	"github.com/angeloszaimis/devboard/internal/render"
	"github.com/angeloszaimis/devboard/pkg/logger"
)

type stubFetcher struct {
	result devs.Result
	calls  int
}

func (s *stubFetcher) Fetch(context.Context) devs.Result {
	s.calls++
	return s.result
}

type spyRenderer struct {
	data   []string
	called bool
	err    error
}

func (s *spyRenderer) Render(w io.Writer, data []string) error {
	s.called = true
	s.data = data
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, "rendered")
	return err
}

var dbConfig = config.DatabaseConfig{
	Host:     "localhost",
	Port:     5432,
	Name:     "sharedappdb",
	User:     "devops",
	Password: "password",
	SSLMode:  "disable",
	Timeout:  "5s",
}

func get(h http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

var _ = Describe("PageHandler", func() {
	var renderer *render.Renderer

	BeforeEach(func() {
		var err error
		renderer, err = render.New("Shared DB app is up and running!")
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewPageHandler", func() {
		It("should create a handler", func() {
			h := handler.NewPageHandler(logger.Discard(), &stubFetcher{}, renderer, config.OnErrorPlaceholder)
			Expect(h).NotTo(BeNil())
		})
	})

	Context("when the fetcher returns names", func() {
		It("should render every name with 200", func() {
			fetcher := &stubFetcher{result: devs.Result{Names: []string{"Precious", "Debby"}}}
			h := handler.NewPageHandler(logger.Discard(), fetcher, renderer, config.OnErrorPlaceholder)

			w := get(h)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("text/html; charset=utf-8"))
			Expect(w.Body.String()).To(ContainSubstring("Precious"))
			Expect(w.Body.String()).To(ContainSubstring("Debby"))
			Expect(fetcher.calls).To(Equal(1))
		})

		It("should pass the names to the renderer unchanged", func() {
			spy := &spyRenderer{}
			fetcher := &stubFetcher{result: devs.Result{Names: []string{"Precious", "Debby"}}}
			h := handler.NewPageHandler(logger.Discard(), fetcher, spy, config.OnErrorPlaceholder)

			get(h)

			Expect(spy.data).To(Equal([]string{"Precious", "Debby"}))
		})
	})

	Context("when the table is empty", func() {
		It("should pass an empty list to the renderer and return 200", func() {
			spy := &spyRenderer{}
			fetcher := &stubFetcher{result: devs.Result{Names: []string{}}}
			h := handler.NewPageHandler(logger.Discard(), fetcher, spy, config.OnErrorPlaceholder)

			w := get(h)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(spy.called).To(BeTrue())
			Expect(spy.data).NotTo(BeNil())
			Expect(spy.data).To(BeEmpty())
		})
	})

	Context("when the fetch fails", func() {
		var fetcher *stubFetcher

		BeforeEach(func() {
			fetcher = &stubFetcher{result: devs.Result{Err: devs.ErrUnavailable}}
		})

		It("should render the placeholder with 200 by default", func() {
			h := handler.NewPageHandler(logger.Discard(), fetcher, renderer, config.OnErrorPlaceholder)

			w := get(h)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("DB Error"))
		})

		It("should treat an empty policy as placeholder", func() {
			h := handler.NewPageHandler(logger.Discard(), fetcher, renderer, "")

			Expect(get(h).Code).To(Equal(http.StatusOK))
		})

		It("should return 503 under the unavailable policy", func() {
			h := handler.NewPageHandler(logger.Discard(), fetcher, renderer, config.OnErrorUnavailable)

			w := get(h)

			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(w.Body.String()).To(ContainSubstring("DB Error"))
		})
	})

	Context("when rendering fails", func() {
		It("should return 500 without a partial page", func() {
			spy := &spyRenderer{err: errors.New("boom")}
			fetcher := &stubFetcher{result: devs.Result{Names: []string{"Precious"}}}
			h := handler.NewPageHandler(logger.Discard(), fetcher, spy, config.OnErrorPlaceholder)

			w := get(h)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).NotTo(ContainSubstring("rendered"))
		})
	})

	Describe("with a real fetcher", func() {
		It("should show DB Error when connecting raises", func() {
			fetcher, err := devs.NewFetcher(logger.Discard(), dbConfig,
				devs.WithConnector(func(context.Context, string) (devs.Conn, error) {
					return nil, errors.New("password authentication failed for user \"devops\"")
				}),
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetcher.FetchNames(context.Background())).To(Equal([]string{"DB Error"}))

			h := handler.NewPageHandler(logger.Discard(), fetcher, renderer, config.OnErrorPlaceholder)
			w := get(h)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("<li>DB Error</li>"))
		})

		It("should render rows read from the database", func() {
			mock, err := pgxmock.NewConn()
			Expect(err).NotTo(HaveOccurred())
			mock.ExpectQuery("SELECT name FROM devs").
				WillReturnRows(mock.NewRows([]string{"name"}).AddRow("Alice").AddRow("Bob"))
			mock.ExpectClose()

			fetcher, err := devs.NewFetcher(logger.Discard(), dbConfig,
				devs.WithConnector(func(context.Context, string) (devs.Conn, error) {
					return mock, nil
				}),
			)
			Expect(err).NotTo(HaveOccurred())

			h := handler.NewPageHandler(logger.Discard(), fetcher, renderer, config.OnErrorPlaceholder)
			w := get(h)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("<li>Alice</li>"))
			Expect(w.Body.String()).To(ContainSubstring("<li>Bob</li>"))
			Expect(mock.ExpectationsWereMet()).To(Succeed())
		})
	})
})
