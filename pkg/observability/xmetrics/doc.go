// Package xmetrics 为 xroller 的各组件提供统一的观测入口（tracing + metrics）。
//
// 组件只依赖 Observer/Span 接口，默认注入 NoopObserver，零开销；
// 需要观测时注入 NewOTelObserver 返回的实现。
//
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xrotate",
//		Operation: "compress",
//		Attrs:     []xmetrics.Attr{xmetrics.String("path", path)},
//	})
//	defer func() { span.End(xmetrics.Result{Err: err}) }()
//
// # 指标
//
//   - xroller.operation.total     计数，单位 1
//   - xroller.operation.duration  直方图，单位 s
//
// 两个指标都带 component / operation / status 三个属性。
// Span 名称为 Operation，Component 作为 span 属性记录。
package xmetrics
