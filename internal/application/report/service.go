// Package report genera reportes de solo lectura (ventas, devoluciones, traslados, stock),
// su exportación a PDF/XLSX y el resumen del dashboard.
package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/authz"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

// Tipos de reporte.
const (
	KindSales     = "sales"
	KindReturns   = "returns"
	KindTransfers = "transfers"
	KindStock     = "stock"
)

// Umbral por defecto de stock bajo en el dashboard.
const DefaultLowStockThreshold = 5

var kindTitles = map[string]string{
	KindSales:     "reporte de ventas",
	KindReturns:   "reporte de devoluciones",
	KindTransfers: "reporte de traslados",
	KindStock:     "reporte de stock",
}

var monthNames = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
	"agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// Repos lecturas que necesita el servicio.
type Repos struct {
	Sales     repository.SaleRepository
	Returns   repository.ReturnRepository
	Transfers repository.TransferRepository
	Stock     repository.StockRepository
	Products  repository.ProductRepository
	Locations repository.LocationRepository
	Customers repository.CustomerRepository
	Reports   repository.ReportRepository
}

// Service reportes y exportación. Nunca escribe.
type Service struct {
	repos     Repos
	renderers map[string]ports.ReportRenderer // por formato: pdf, xlsx
	now       func() time.Time
}

// NewService construye el servicio. renderers se indexan por su Extension().
func NewService(repos Repos, renderers ...ports.ReportRenderer) *Service {
	byFormat := make(map[string]ports.ReportRenderer, len(renderers))
	for _, r := range renderers {
		byFormat[r.Extension()] = r
	}
	return &Service{
		repos:     repos,
		renderers: byFormat,
		now:       time.Now,
	}
}

// Report arma el reporte tabular del tipo pedido en el rango [from, to].
func (s *Service) Report(ctx context.Context, actor entity.Actor, kind string, from, to time.Time) (*dto.ReportResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.build(ctx, kind, from, to)
}

// Export genera el archivo del reporte (sólo admin).
func (s *Service) Export(ctx context.Context, actor entity.Actor, kind, format string, from, to time.Time) (*dto.ExportFile, error) {
	if err := authz.Authorize(actor, authz.ActionExportReports); err != nil {
		return nil, err
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: formato %q", domain.ErrValidation, format)
	}
	rep, err := s.build(ctx, kind, from, to)
	if err != nil {
		return nil, err
	}
	data, err := renderer.Render(rep)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("%s_%s.%s", kind, rep.To.Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func (s *Service) build(ctx context.Context, kind string, from, to time.Time) (*dto.ReportResponse, error) {
	title, ok := kindTitles[kind]
	if !ok {
		return nil, fmt.Errorf("%w: tipo de reporte %q", domain.ErrValidation, kind)
	}
	if to.IsZero() {
		to = s.now()
	}
	if !from.IsZero() && from.After(to) {
		return nil, fmt.Errorf("%w: from posterior a to", domain.ErrValidation)
	}
	rep := &dto.ReportResponse{Kind: kind, Title: titleCase(title), From: from, To: to}

	var err error
	switch kind {
	case KindSales:
		err = s.salesRows(ctx, rep)
	case KindReturns:
		err = s.returnRows(ctx, rep)
	case KindTransfers:
		err = s.transferRows(ctx, rep)
	case KindStock:
		err = s.stockRows(ctx, rep)
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *Service) salesRows(ctx context.Context, rep *dto.ReportResponse) error {
	list, err := s.repos.Sales.List(ctx, entity.SaleFilter{From: rep.From, To: rep.To})
	if err != nil {
		return err
	}
	names := newNameCache(s.repos)
	rep.Columns = []string{"Número", "Fecha", "Cliente", "Van", "Subtotal", "Descuento", "Impuesto", "Total", "Pago"}
	total := decimal.Zero
	for _, sale := range list {
		customer, err := names.customer(ctx, sale.CustomerID)
		if err != nil {
			return err
		}
		van, err := names.location(ctx, sale.VanID)
		if err != nil {
			return err
		}
		rep.Rows = append(rep.Rows, []string{
			sale.Number,
			sale.Date.Format("2006-01-02 15:04"),
			customer,
			van,
			sale.Subtotal.StringFixed(2),
			sale.Discount.StringFixed(2),
			sale.Tax.StringFixed(2),
			sale.Total.StringFixed(2),
			sale.Payment.Status,
		})
		total = total.Add(sale.Total)
	}
	rep.Footer = []string{"Total", strconv.Itoa(len(list)) + " ventas", "", "", "", "", "", total.StringFixed(2), ""}
	return nil
}

func (s *Service) returnRows(ctx context.Context, rep *dto.ReportResponse) error {
	list, err := s.repos.Returns.List(ctx, entity.ReturnFilter{From: rep.From, To: rep.To})
	if err != nil {
		return err
	}
	names := newNameCache(s.repos)
	rep.Columns = []string{"Fecha", "Venta", "Cliente", "Van", "Motivo", "Reembolso", "Monto"}
	total := decimal.Zero
	for _, r := range list {
		customer, err := names.customer(ctx, r.CustomerID)
		if err != nil {
			return err
		}
		van, err := names.location(ctx, r.VanID)
		if err != nil {
			return err
		}
		rep.Rows = append(rep.Rows, []string{
			r.Date.Format("2006-01-02 15:04"),
			r.SaleID,
			customer,
			van,
			r.Reason,
			r.RefundMode,
			r.RefundTotal.StringFixed(2),
		})
		total = total.Add(r.RefundTotal)
	}
	rep.Footer = []string{"Total", strconv.Itoa(len(list)) + " devoluciones", "", "", "", "", total.StringFixed(2)}
	return nil
}

func (s *Service) transferRows(ctx context.Context, rep *dto.ReportResponse) error {
	list, err := s.repos.Transfers.List(ctx, entity.TransferFilter{From: rep.From, To: rep.To})
	if err != nil {
		return err
	}
	names := newNameCache(s.repos)
	rep.Columns = []string{"Fecha", "Origen", "Destino", "Productos", "Unidades", "Estado"}
	var lines, total int64
	for _, t := range list {
		src, err := names.location(ctx, t.SourceID)
		if err != nil {
			return err
		}
		dst, err := names.location(ctx, t.DestinationID)
		if err != nil {
			return err
		}
		var units int64
		for _, l := range t.Lines {
			units += l.Quantity
		}
		rep.Rows = append(rep.Rows, []string{
			t.Date.Format("2006-01-02 15:04"),
			src,
			dst,
			strconv.Itoa(len(t.Lines)),
			strconv.FormatInt(units, 10),
			t.Status,
		})
		lines += int64(len(t.Lines))
		total += units
	}
	rep.Footer = []string{"Total", strconv.Itoa(len(list)) + " traslados", "", strconv.FormatInt(lines, 10) + " productos", strconv.FormatInt(total, 10), ""}
	return nil
}

func (s *Service) stockRows(ctx context.Context, rep *dto.ReportResponse) error {
	rows, err := s.repos.Stock.ListAll(ctx)
	if err != nil {
		return err
	}
	names := newNameCache(s.repos)
	rep.Columns = []string{"Código", "Producto", "Ubicación", "Cantidad"}
	var units int64
	for _, r := range rows {
		code, name, err := names.product(ctx, r.ProductID)
		if err != nil {
			return err
		}
		loc, err := names.location(ctx, r.LocationID)
		if err != nil {
			return err
		}
		rep.Rows = append(rep.Rows, []string{code, name, loc, strconv.FormatInt(r.Quantity, 10)})
		units += r.Quantity
	}
	rep.Footer = []string{"Total", "", "", strconv.FormatInt(units, 10)}
	return nil
}

// Dashboard resumen del período: ventas, devoluciones, traslados y stock bajo, consultados en paralelo.
func (s *Service) Dashboard(ctx context.Context, actor entity.Actor, from, to time.Time, threshold int64) (*dto.DashboardSummaryDTO, error) {
	if err := authz.Authorize(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	now := s.now()
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, to.Location())
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: from posterior a to", domain.ErrValidation)
	}
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	var (
		salesTotals   repository.AmountCount
		returnsTotals repository.AmountCount
		transfers     int
		lowStock      []repository.LowStockRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		salesTotals, err = s.repos.Reports.SalesTotals(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		returnsTotals, err = s.repos.Reports.ReturnsTotals(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		transfers, err = s.repos.Reports.TransferCount(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		lowStock, err = s.repos.Reports.LowStock(gctx, threshold)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	out := &dto.DashboardSummaryDTO{
		SalesAmount:   salesTotals.Amount,
		SalesCount:    salesTotals.Count,
		ReturnsAmount: returnsTotals.Amount,
		ReturnsCount:  returnsTotals.Count,
		TransferCount: transfers,
		LowStock:      make([]dto.LowStockDTO, 0, len(lowStock)),
		DateLabel:     titleCase(monthNames[to.Month()-1]) + " " + strconv.Itoa(to.Year()),
	}
	for _, r := range lowStock {
		out.LowStock = append(out.LowStock, dto.LowStockDTO(r))
	}
	return out, nil
}

// titleCase crea un Caser por llamada; no es seguro compartirlo entre goroutines.
func titleCase(s string) string {
	return cases.Title(language.Spanish).String(s)
}

// nameCache resuelve nombres legibles una sola vez por reporte.
type nameCache struct {
	repos     Repos
	customers map[string]string
	locations map[string]string
	products  map[string][2]string
}

func newNameCache(repos Repos) *nameCache {
	return &nameCache{
		repos:     repos,
		customers: map[string]string{},
		locations: map[string]string{},
		products:  map[string][2]string{},
	}
}

func (c *nameCache) customer(ctx context.Context, id string) (string, error) {
	if n, ok := c.customers[id]; ok {
		return n, nil
	}
	cu, err := c.repos.Customers.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	name := id
	if cu != nil {
		name = cu.Name
	}
	c.customers[id] = name
	return name, nil
}

func (c *nameCache) location(ctx context.Context, id string) (string, error) {
	if n, ok := c.locations[id]; ok {
		return n, nil
	}
	l, err := c.repos.Locations.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	name := id
	if l != nil {
		name = l.Code
	}
	c.locations[id] = name
	return name, nil
}

func (c *nameCache) product(ctx context.Context, id string) (string, string, error) {
	if n, ok := c.products[id]; ok {
		return n[0], n[1], nil
	}
	p, err := c.repos.Products.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	v := [2]string{id, ""}
	if p != nil {
		v = [2]string{p.Code, p.Name}
	}
	c.products[id] = v
	return v[0], v[1], nil
}
